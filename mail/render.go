package mail

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"mailbuilder/common"
	"mailbuilder/css"
)

// DefaultHeadingLevel is used when heading content does not specify level.
const DefaultHeadingLevel = 2

// Button and divider presentation used unless block styles override it.
var (
	buttonStyles = map[string]any{
		"display":         "inline-block",
		"backgroundColor": "#007bff",
		"color":           "#ffffff",
		"padding":         "12px 24px",
		"borderRadius":    4,
		"textDecoration":  "none",
		"fontWeight":      "bold",
	}
	dividerStyles = map[string]any{
		"borderWidth": "1px 0 0 0",
		"borderColor": "#cccccc",
		"margin":      "16px 0",
	}
)

// ButtonStyles returns copy of default button presentation.
func ButtonStyles() map[string]any {
	return maps.Clone(buttonStyles)
}

// DividerStyles returns copy of default divider presentation.
func DividerStyles() map[string]any {
	return maps.Clone(dividerStyles)
}

var unitless = map[string]bool{
	"fontWeight": true,
	"lineHeight": true,
	"opacity":    true,
	"zIndex":     true,
	"flexGrow":   true,
}

// ToHTML renders blocks as HTML fragment, one top level element per line.
// Unknown and malformed blocks are skipped. All text is escaped.
func ToHTML(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := RenderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// RenderBlock renders single block, empty string when block is skipped.
func RenderBlock(b Block) string {
	n := BlockNode(b)
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// BlockNode builds detached element for the block, nil when block is skipped.
func BlockNode(b Block) *html.Node {
	c := b.Content
	var n *html.Node
	switch b.Type {
	case common.BlockTypeText:
		n = element(atom.P)
		appendText(n, c.Text)
		setStyle(n, b.Styles, nil)
	case common.BlockTypeHeading:
		level := c.Level
		if level < 1 || level > 6 {
			level = DefaultHeadingLevel
		}
		n = &html.Node{Type: html.ElementNode, Data: "h" + strconv.Itoa(level)}
		n.DataAtom = atom.Lookup([]byte(n.Data))
		appendText(n, c.Text)
		setStyle(n, b.Styles, nil)
	case common.BlockTypeImage:
		if strings.TrimSpace(c.Src) == "" || !safeURL(c.Src) {
			return nil
		}
		n = element(atom.Img)
		n.Attr = append(n.Attr,
			html.Attribute{Key: "src", Val: c.Src},
			html.Attribute{Key: "alt", Val: c.Alt},
		)
		if c.Width > 0 {
			n.Attr = append(n.Attr, html.Attribute{Key: "width", Val: strconv.Itoa(c.Width)})
		}
		if c.Height > 0 {
			n.Attr = append(n.Attr, html.Attribute{Key: "height", Val: strconv.Itoa(c.Height)})
		}
		setStyle(n, b.Styles, nil)
	case common.BlockTypeButton:
		if strings.TrimSpace(c.Text) == "" || strings.TrimSpace(c.URL) == "" || !safeURL(c.URL) {
			return nil
		}
		n = element(atom.A)
		n.Attr = append(n.Attr,
			html.Attribute{Key: "href", Val: c.URL},
			html.Attribute{Key: "target", Val: "_blank"},
		)
		appendText(n, c.Text)
		setStyle(n, b.Styles, buttonStyles)
	case common.BlockTypeDivider:
		bs := c.Style
		if !bs.IsValid() {
			bs = common.BorderStyleSolid
		}
		n = element(atom.Hr)
		defaults := DividerStyles()
		defaults["borderStyle"] = bs.String()
		setStyle(n, b.Styles, defaults)
	default:
		return nil
	}
	return n
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func appendText(n *html.Node, text string) {
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// setStyle merges defaults with block styles and writes style attribute.
// Nothing is written when resulting style is empty.
func setStyle(n *html.Node, styles, defaults map[string]any) {
	if s := InlineStyle(styles, defaults); s != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: s})
	}
}

// InlineStyle converts camelCase style map into "prop: value; ..." string
// with properties sorted by name. Values of styles take precedence over
// defaults, unsafe values are dropped.
func InlineStyle(styles, defaults map[string]any) string {
	merged := make(map[string]string, len(styles)+len(defaults))
	for k, v := range defaults {
		if s := StyleValue(k, v); s != "" {
			merged[k] = s
		}
	}
	for k, v := range styles {
		s := StyleValue(k, v)
		if s == "" {
			delete(merged, k)
			continue
		}
		merged[k] = s
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		if validStyleKey(k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	decls := make([]css.Declaration, 0, len(keys))
	for _, k := range keys {
		decls = append(decls, css.Decl(KebabCase(k), merged[k]))
	}
	return css.FormatDeclarations(decls)
}

// StyleValue formats style value. Numbers get "px" unless property is
// unitless. Values which could break out of the declaration are dropped.
func StyleValue(key string, v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = strings.TrimSpace(val)
	case int:
		s = numeric(key, float64(val))
	case int64:
		s = numeric(key, float64(val))
	case float64:
		s = numeric(key, val)
	case bool:
		return ""
	default:
		s = strings.TrimSpace(fmt.Sprint(val))
	}
	if strings.ContainsAny(s, ";{}<>\"\\") {
		return ""
	}
	return s
}

func numeric(key string, f float64) string {
	num := strconv.FormatFloat(f, 'f', -1, 64)
	if unitless[key] || f == 0 || math.IsNaN(f) {
		return num
	}
	return num + "px"
}

// KebabCase converts camelCase property name to CSS form.
func KebabCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func validStyleKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-') {
			return false
		}
	}
	return true
}

// safeURL rejects schemes which execute code in mail clients.
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel", "cid", "data":
		if strings.EqualFold(u.Scheme, "data") && !strings.HasPrefix(strings.ToLower(u.Opaque), "image/") {
			return false
		}
		return true
	}
	return false
}
