package style

import (
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/css"
	"mailbuilder/ident"
)

func TestInlineStyleListIndent(t *testing.T) {
	for _, p := range []int{0, 1, 10, 174} {
		rec := DefaultListItem
		rec.PaddingLeft = p
		got := InlineStyle(common.BlockKindListItem, rec)

		want := "margin-left: " + strconv.Itoa(ListIndent+p) + "px"
		if !strings.Contains(got, want) {
			t.Errorf("paddingLeft=%d: %q does not contain %q", p, got, want)
		}
		if strings.Contains(got, "padding-left") {
			t.Errorf("paddingLeft=%d: %q contains padding-left", p, got)
		}
	}
}

func TestInlineStyleParagraph(t *testing.T) {
	got := InlineStyle(common.BlockKindParagraph, DefaultParagraph)
	want := "text-align: left; font-size: 15px; line-height: 150%; color: #000000; " +
		"padding-top: 0px; padding-right: 0px; padding-bottom: 0px; padding-left: 0px; " +
		"margin-top: 0px; margin-right: 0px; margin-bottom: 0px; margin-left: 0px"
	if got != want {
		t.Errorf("InlineStyle() =\n%q\nwant\n%q", got, want)
	}
}

func TestInlineStyleBorder(t *testing.T) {
	rec := DefaultParagraph
	rec.BorderWidth = 2
	rec.BorderColor = "#cccccc"
	rec.BorderRadius = 4
	got := InlineStyle(common.BlockKindParagraph, rec)
	for _, s := range []string{"border-width: 2px", "border-style: solid", "border-color: #cccccc", "border-radius: 4px"} {
		if !strings.Contains(got, s) {
			t.Errorf("%q does not contain %q", got, s)
		}
	}
}

func TestCSSRule(t *testing.T) {
	got := CSSRule(DefaultHeading[0], "mb-test")
	if !strings.HasPrefix(got, ".mb-test {\n") || !strings.HasSuffix(got, "}") {
		t.Errorf("CSSRule() = %q", got)
	}
	if !strings.Contains(got, "  font-size: 32px;\n") {
		t.Errorf("CSSRule() = %q", got)
	}
}

func TestEmailCSSRoundTrip(t *testing.T) {
	s := NewEmailStyles("seed", ident.Default, zap.NewNop())
	s.Set(KeyFontFamily, "Times New Roman")
	s.Set(KeyPaddingTop, 30)
	rec := s.Get()

	text := EmailCSS(rec)
	sheet := css.NewParser(zap.NewNop()).Parse([]byte(text))

	other := NewEmailStyles("other", ident.Default, zap.NewNop())
	if !other.AdoptCSS(sheet, "."+rec.ClassName) {
		t.Fatalf("AdoptCSS() = false for %q", text)
	}
	got := other.Get()
	if got.FontFamily != "Times New Roman" || got.FallbackFont != "sans-serif" || got.PaddingTop != 30 {
		t.Errorf("adopted record = %+v", got)
	}
	if got.ClassName == rec.ClassName {
		t.Errorf("AdoptCSS() changed class name")
	}
}

func TestParseInline(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	rec := DefaultParagraph
	rec.Alignment = common.AlignmentRight
	rec.FontSize = 22
	rec.PaddingLeft = 5
	rec.BackgroundColor = "#eeeeee"
	if got := ParseInline(p, InlineStyle(common.BlockKindParagraph, rec), common.BlockKindParagraph, 0); got != rec {
		t.Errorf("paragraph round trip = %+v, want %+v", got, rec)
	}

	li := DefaultListItem
	li.PaddingLeft = 12
	if got := ParseInline(p, InlineStyle(common.BlockKindListItem, li), common.BlockKindListItem, 0); got != li {
		t.Errorf("list item round trip = %+v, want %+v", got, li)
	}

	got := ParseInline(nil, "line-height: 1.5; font-size: 300px", common.BlockKindHeading, 1)
	if got.LineHeight != 150 || got.FontSize != MaxFontSize {
		t.Errorf("ParseInline() = %+v", got)
	}
}

func TestEmailStylesClassName(t *testing.T) {
	s := NewEmailStyles("", nil, nil)
	name := s.ClassName()
	if !strings.HasPrefix(name, ident.ClassPrefix+"-") {
		t.Errorf("ClassName() = %q", name)
	}
	s.Set(KeyBodyColor, "#123")
	s.Reset()
	if s.ClassName() != name || s.Get().BodyColor != DefaultEmail.BodyColor {
		t.Errorf("Reset() = %+v", s.Get())
	}

	a := NewEmailStyles("same", nil, nil).ClassName()
	b := NewEmailStyles("same", nil, nil).ClassName()
	if a != b {
		t.Errorf("seeded class names differ: %q %q", a, b)
	}
}

func TestValidate(t *testing.T) {
	if res := DefaultParagraph.Validate(); !res.Valid {
		t.Errorf("defaults are invalid: %v", res.Errors)
	}
	bad := Record{Alignment: "justify", FontSize: 2, LineHeight: 150, Color: "red"}
	res := bad.Validate()
	if res.Valid || len(res.Errors) != 3 {
		t.Errorf("Validate() = %+v", res)
	}

	if res := DefaultEmail.Validate(); !res.Valid {
		t.Errorf("email defaults are invalid: %v", res.Errors)
	}
	email := DefaultEmail
	email.FontFamily = "x; }"
	email.BorderWidth = 99
	if res := email.Validate(); res.Valid || len(res.Errors) != 2 {
		t.Errorf("email Validate() = %+v", res)
	}
}
