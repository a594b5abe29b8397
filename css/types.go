package css

import (
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "12px", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "px", "%", "em", etc.
	Keyword string  // Keyword if applicable: "center", "#ff0000", "solid", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Decl makes declaration from already formatted value.
func Decl(property, raw string) Declaration {
	return Declaration{Property: property, Value: Value{Raw: raw}}
}

// Px makes pixel declaration.
func Px(property string, v int) Declaration {
	return Declaration{Property: property, Value: Value{Raw: strconv.Itoa(v) + "px", Value: float64(v), Unit: "px"}}
}

// Percent makes percentage declaration.
func Percent(property string, v int) Declaration {
	return Declaration{Property: property, Value: Value{Raw: strconv.Itoa(v) + "%", Value: float64(v), Unit: "%"}}
}

// FormatDeclarations joins declarations into inline style form:
// "prop: value; prop2: value2". Declarations with empty value are skipped.
func FormatDeclarations(decls []Declaration) string {
	var sb strings.Builder
	for _, d := range decls {
		if d.Value.Raw == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value.Raw)
	}
	return sb.String()
}

// Rule represents a single CSS rule (selector + declarations in source order).
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// GetProperty returns the last value for a property.
func (r Rule) GetProperty(name string) (Value, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			return r.Declarations[i].Value, true
		}
	}
	return Value{}, false
}

// Stylesheet is a list of parsed rules. At-rules are not preserved.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}

// RulesBySelector returns all rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var out []Rule
	for _, r := range s.Rules {
		if r.Selector == selector {
			out = append(out, r)
		}
	}
	return out
}

// WriteTo writes stylesheet as CSS text.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := range s.Rules {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := io.WriteString(w, FormatRule(s.Rules[i]))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Stylesheet) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

// FormatRule produces ".selector { prop: value; ... }" block, one declaration per line.
func FormatRule(r Rule) string {
	var sb strings.Builder
	sb.WriteString(r.Selector)
	sb.WriteString(" {\n")
	for _, d := range r.Declarations {
		if d.Value.Raw == "" {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value.Raw)
		sb.WriteString(";\n")
	}
	sb.WriteString("}")
	return sb.String()
}
