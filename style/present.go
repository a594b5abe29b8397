package style

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/css"
)

// Declarations converts record into ordered CSS declarations. Colors which are
// unset are omitted, border properties are only emitted for visible borders.
// List items have padding-left folded into margin-left on top of ListIndent.
func Declarations(kind common.BlockKind, rec Record) []css.Declaration {
	decls := make([]css.Declaration, 0, 17)
	if rec.Alignment != "" {
		decls = append(decls, css.Decl("text-align", rec.Alignment.String()))
	}
	decls = append(decls,
		css.Px("font-size", rec.FontSize),
		css.Percent("line-height", rec.LineHeight),
		css.Decl("color", rec.Color),
		css.Decl("background-color", rec.BackgroundColor),
	)
	if rec.BorderWidth > 0 {
		decls = append(decls,
			css.Px("border-width", rec.BorderWidth),
			css.Decl("border-style", common.BorderStyleSolid.String()),
			css.Decl("border-color", rec.BorderColor),
		)
	}
	if rec.BorderRadius > 0 {
		decls = append(decls, css.Px("border-radius", rec.BorderRadius))
	}
	decls = append(decls,
		css.Px("padding-top", rec.PaddingTop),
		css.Px("padding-right", rec.PaddingRight),
		css.Px("padding-bottom", rec.PaddingBottom),
	)
	marginLeft := rec.MarginLeft
	if kind == common.BlockKindListItem {
		marginLeft = ListIndent + rec.PaddingLeft
	} else {
		decls = append(decls, css.Px("padding-left", rec.PaddingLeft))
	}
	decls = append(decls,
		css.Px("margin-top", rec.MarginTop),
		css.Px("margin-right", rec.MarginRight),
		css.Px("margin-bottom", rec.MarginBottom),
		css.Px("margin-left", marginLeft),
	)
	return decls
}

// InlineStyle produces content of the style attribute:
// "prop: value; prop2: value2".
func InlineStyle(kind common.BlockKind, rec Record) string {
	return css.FormatDeclarations(Declarations(kind, rec))
}

// CSSRule produces ".className { ... }" block for the record.
func CSSRule(rec Record, className string) string {
	return css.FormatRule(css.Rule{
		Selector:     "." + strings.TrimPrefix(className, "."),
		Declarations: Declarations(common.BlockKindParagraph, rec),
	})
}

// EmailDeclarations converts email wide record into ordered declarations.
func EmailDeclarations(rec EmailRecord) []css.Declaration {
	family := rec.FontFamily
	if strings.ContainsAny(family, " \t") {
		family = strconv.Quote(family)
	}
	if rec.FallbackFont != "" {
		family += ", " + rec.FallbackFont
	}
	decls := []css.Declaration{
		css.Decl("font-family", family),
		css.Decl("color", rec.BodyColor),
		css.Decl("background-color", rec.BackgroundColor),
	}
	if rec.BorderWidth > 0 {
		decls = append(decls,
			css.Px("border-width", rec.BorderWidth),
			css.Decl("border-style", common.BorderStyleSolid.String()),
			css.Decl("border-color", rec.BorderColor),
		)
	}
	if rec.BorderRadius > 0 {
		decls = append(decls, css.Px("border-radius", rec.BorderRadius))
	}
	return append(decls,
		css.Px("padding-top", rec.PaddingTop),
		css.Px("padding-right", rec.PaddingRight),
		css.Px("padding-bottom", rec.PaddingBottom),
		css.Px("padding-left", rec.PaddingLeft),
		css.Px("margin-top", rec.MarginTop),
		css.Px("margin-right", rec.MarginRight),
		css.Px("margin-bottom", rec.MarginBottom),
		css.Px("margin-left", rec.MarginLeft),
	)
}

// EmailCSS produces stylesheet rule for the email wide record using its class name.
func EmailCSS(rec EmailRecord) string {
	return css.FormatRule(css.Rule{
		Selector:     "." + rec.ClassName,
		Declarations: EmailDeclarations(rec),
	})
}

// ParseInline reads style attribute back into a record. Properties which are
// absent keep defaults of the kind, the result is sanitized.
func ParseInline(p *css.Parser, style string, kind common.BlockKind, level int) Record {
	if p == nil {
		p = css.NewParser(zap.NewNop())
	}
	def := Defaults(kind, level)
	rec := def
	for _, d := range p.ParseInline(style) {
		v := d.Value
		switch d.Property {
		case "text-align":
			rec.Alignment = common.Alignment(v.Keyword)
		case "color":
			rec.Color = v.Raw
		case "background-color":
			rec.BackgroundColor = v.Raw
		case "border-color":
			rec.BorderColor = v.Raw
		case "font-size":
			if v.IsNumeric() {
				rec.FontSize = int(v.Value)
			}
		case "line-height":
			if !v.IsNumeric() {
				continue
			}
			if v.Unit == "%" {
				rec.LineHeight = int(v.Value)
			} else if v.Unit == "" {
				// unitless multiplier
				rec.LineHeight = int(v.Value * 100)
			}
		default:
			key, ok := boxKeys[d.Property]
			if !ok || !v.IsNumeric() {
				continue
			}
			*rec.intField(key) = int(v.Value)
		}
	}
	if kind == common.BlockKindListItem {
		rec.PaddingLeft = max(rec.MarginLeft-ListIndent, 0)
		rec.MarginLeft = 0
	}
	return rec.Sanitize(def)
}
