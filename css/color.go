package css

import (
	"strings"
)

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"navy":    "#000080",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"teal":    "#008080",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"aqua":    "#00ffff",
	"fuchsia": "#ff00ff",
}

// NormalizeColor converts color to lower-case "#rrggbb" form. Short "#rgb"
// form is expanded and basic named colors are resolved. Returns false when
// value cannot be understood.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return hex, true
	}
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	digits := s[1:]
	for _, r := range digits {
		if !isHexDigit(r) {
			return "", false
		}
	}
	switch len(digits) {
	case 3:
		var sb strings.Builder
		sb.WriteByte('#')
		for _, r := range digits {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String(), true
	case 6:
		return s, true
	default:
		return "", false
	}
}

// IsHexColor reports whether s is "#rgb" or "#rrggbb".
func IsHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return false
	}
	for _, r := range s[1:] {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
