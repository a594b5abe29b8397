package css_test

import (
	"testing"

	"go.uber.org/zap"

	"mailbuilder/css"
)

func TestParser_ParseInline(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	decls := p.ParseInline("text-align: center; font-size: 18px; line-height: 140%; color: #FFF; margin-left: 0")
	if len(decls) != 5 {
		t.Fatalf("expected 5 declarations, got %d: %+v", len(decls), decls)
	}

	tests := []struct {
		prop    string
		value   float64
		unit    string
		keyword string
	}{
		{"text-align", 0, "", "center"},
		{"font-size", 18, "px", ""},
		{"line-height", 140, "%", ""},
		{"color", 0, "", "#fff"},
		{"margin-left", 0, "", ""},
	}
	for i, tt := range tests {
		d := decls[i]
		if d.Property != tt.prop {
			t.Errorf("declaration %d: property %q, want %q", i, d.Property, tt.prop)
		}
		if d.Value.Value != tt.value || d.Value.Unit != tt.unit || d.Value.Keyword != tt.keyword {
			t.Errorf("%s: got %+v", tt.prop, d.Value)
		}
	}
	if !decls[4].Value.IsNumeric() {
		t.Errorf("margin-left 0 should be numeric")
	}
}

func TestParser_ParseInlineEmpty(t *testing.T) {
	p := css.NewParser(nil)
	if decls := p.ParseInline("   "); decls != nil {
		t.Errorf("expected no declarations, got %+v", decls)
	}
}

func TestParser_Parse(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
@media screen { p { color: red; } }
.mb-abc { font-family: Arial, sans-serif; padding-top: 10px; }
`), "test")

	rules := sheet.RulesBySelector(".mb-abc")
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d (all: %+v)", len(rules), sheet.Rules)
	}
	v, ok := rules[0].GetProperty("padding-top")
	if !ok || v.Value != 10 || v.Unit != "px" {
		t.Errorf("padding-top = %+v, %v", v, ok)
	}
	if len(sheet.RulesBySelector("p")) != 0 {
		t.Errorf("rules inside @media should be skipped")
	}
	if len(sheet.Warnings) == 0 {
		t.Errorf("expected warning for skipped @media")
	}
}

func TestFormatDeclarations(t *testing.T) {
	got := css.FormatDeclarations([]css.Declaration{
		css.Decl("text-align", "left"),
		css.Decl("color", ""),
		css.Px("font-size", 15),
		css.Percent("line-height", 150),
	})
	want := "text-align: left; font-size: 15px; line-height: 150%"
	if got != want {
		t.Errorf("FormatDeclarations() = %q, want %q", got, want)
	}
}

func TestFormatRule(t *testing.T) {
	got := css.FormatRule(css.Rule{Selector: ".mb-x", Declarations: []css.Declaration{css.Px("padding-top", 4)}})
	want := ".mb-x {\n  padding-top: 4px;\n}"
	if got != want {
		t.Errorf("FormatRule() = %q, want %q", got, want)
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FFF", "#ffffff", true},
		{"#a1B2c3", "#a1b2c3", true},
		{"White", "#ffffff", true},
		{"#12", "", false},
		{"#ggg", "", false},
		{"rgb(1,2,3)", "", false},
	}
	for _, tt := range tests {
		got, ok := css.NormalizeColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeColor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
