// Package style keeps presentation records of structural blocks out of the
// document tree. Records are keyed by block identity, so they survive node
// replacement caused by undo, redo or re-rendering.
package style

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mailbuilder/common"
	"mailbuilder/css"
)

// Property keys accepted by Set. Names match JSON field names.
const (
	KeyAlignment       = "alignment"
	KeyBorderWidth     = "borderWidth"
	KeyBorderRadius    = "borderRadius"
	KeyBorderColor     = "borderColor"
	KeyPaddingTop      = "paddingTop"
	KeyPaddingRight    = "paddingRight"
	KeyPaddingBottom   = "paddingBottom"
	KeyPaddingLeft     = "paddingLeft"
	KeyMarginTop       = "marginTop"
	KeyMarginRight     = "marginRight"
	KeyMarginBottom    = "marginBottom"
	KeyMarginLeft      = "marginLeft"
	KeyBackgroundColor = "backgroundColor"
	KeyFontSize        = "fontSize"
	KeyLineHeight      = "lineHeight"
	KeyColor           = "color"
)

// Ranges numeric properties are clamped to.
const (
	MinFontSize     = 8
	MaxFontSize     = 96
	MinLineHeight   = 50
	MaxLineHeight   = 400
	MaxSpacing      = 200
	MaxBorderWidth  = 20
	MaxBorderRadius = 100
)

// Record is a flat set of presentation properties of a single block. Sizes
// are in pixels, LineHeight is in percent. Empty color means unset.
type Record struct {
	Alignment       common.Alignment `json:"alignment" yaml:"alignment"`
	BorderWidth     int              `json:"borderWidth" yaml:"borderWidth"`
	BorderRadius    int              `json:"borderRadius" yaml:"borderRadius"`
	BorderColor     string           `json:"borderColor" yaml:"borderColor"`
	PaddingTop      int              `json:"paddingTop" yaml:"paddingTop"`
	PaddingRight    int              `json:"paddingRight" yaml:"paddingRight"`
	PaddingBottom   int              `json:"paddingBottom" yaml:"paddingBottom"`
	PaddingLeft     int              `json:"paddingLeft" yaml:"paddingLeft"`
	MarginTop       int              `json:"marginTop" yaml:"marginTop"`
	MarginRight     int              `json:"marginRight" yaml:"marginRight"`
	MarginBottom    int              `json:"marginBottom" yaml:"marginBottom"`
	MarginLeft      int              `json:"marginLeft" yaml:"marginLeft"`
	BackgroundColor string           `json:"backgroundColor" yaml:"backgroundColor"`
	FontSize        int              `json:"fontSize" yaml:"fontSize"`
	LineHeight      int              `json:"lineHeight" yaml:"lineHeight"`
	Color           string           `json:"color" yaml:"color"`
}

// set updates single property. Values are not clamped here.
func (r *Record) set(key string, value any) error {
	switch key {
	case KeyAlignment:
		s, err := toString(value)
		if err != nil {
			return err
		}
		r.Alignment = common.Alignment(strings.ToLower(strings.TrimSpace(s)))
		return nil
	case KeyBorderColor, KeyBackgroundColor, KeyColor:
		s, err := toString(value)
		if err != nil {
			return err
		}
		switch key {
		case KeyBorderColor:
			r.BorderColor = s
		case KeyBackgroundColor:
			r.BackgroundColor = s
		default:
			r.Color = s
		}
		return nil
	}

	dst := r.intField(key)
	if dst == nil {
		return fmt.Errorf("unknown style property %q", key)
	}
	v, err := toInt(value)
	if err != nil {
		return fmt.Errorf("bad value for %q: %w", key, err)
	}
	*dst = v
	return nil
}

func (r *Record) intField(key string) *int {
	switch key {
	case KeyBorderWidth:
		return &r.BorderWidth
	case KeyBorderRadius:
		return &r.BorderRadius
	case KeyPaddingTop:
		return &r.PaddingTop
	case KeyPaddingRight:
		return &r.PaddingRight
	case KeyPaddingBottom:
		return &r.PaddingBottom
	case KeyPaddingLeft:
		return &r.PaddingLeft
	case KeyMarginTop:
		return &r.MarginTop
	case KeyMarginRight:
		return &r.MarginRight
	case KeyMarginBottom:
		return &r.MarginBottom
	case KeyMarginLeft:
		return &r.MarginLeft
	case KeyFontSize:
		return &r.FontSize
	case KeyLineHeight:
		return &r.LineHeight
	}
	return nil
}

// Sanitize clamps numeric properties to their ranges and normalizes colors.
// Invalid values are replaced with values from def.
func (r Record) Sanitize(def Record) Record {
	if !r.Alignment.IsValid() {
		r.Alignment = def.Alignment
	}
	r.BorderWidth = clamp(r.BorderWidth, 0, MaxBorderWidth)
	r.BorderRadius = clamp(r.BorderRadius, 0, MaxBorderRadius)
	for _, p := range []*int{
		&r.PaddingTop, &r.PaddingRight, &r.PaddingBottom, &r.PaddingLeft,
		&r.MarginTop, &r.MarginRight, &r.MarginBottom, &r.MarginLeft,
	} {
		*p = clamp(*p, 0, MaxSpacing)
	}
	r.FontSize = clamp(r.FontSize, MinFontSize, MaxFontSize)
	r.LineHeight = clamp(r.LineHeight, MinLineHeight, MaxLineHeight)
	r.BorderColor = sanitizeColor(r.BorderColor, def.BorderColor)
	r.BackgroundColor = sanitizeColor(r.BackgroundColor, def.BackgroundColor)
	r.Color = sanitizeColor(r.Color, def.Color)
	return r
}

// Validate reports every property which is out of range or malformed.
func (r Record) Validate() common.ValidationResult {
	res := common.NewValidationResult()
	if !r.Alignment.IsValid() {
		res.Addf("alignment %q is not one of %s", r.Alignment, strings.Join(common.AlignmentNames(), ", "))
	}
	checkRange(&res, KeyBorderWidth, r.BorderWidth, 0, MaxBorderWidth)
	checkRange(&res, KeyBorderRadius, r.BorderRadius, 0, MaxBorderRadius)
	for _, key := range []string{
		KeyPaddingTop, KeyPaddingRight, KeyPaddingBottom, KeyPaddingLeft,
		KeyMarginTop, KeyMarginRight, KeyMarginBottom, KeyMarginLeft,
	} {
		checkRange(&res, key, *r.intField(key), 0, MaxSpacing)
	}
	checkRange(&res, KeyFontSize, r.FontSize, MinFontSize, MaxFontSize)
	checkRange(&res, KeyLineHeight, r.LineHeight, MinLineHeight, MaxLineHeight)
	checkColor(&res, KeyBorderColor, r.BorderColor)
	checkColor(&res, KeyBackgroundColor, r.BackgroundColor)
	checkColor(&res, KeyColor, r.Color)
	return res
}

func checkRange(res *common.ValidationResult, key string, v, lo, hi int) {
	if v < lo || v > hi {
		res.Addf("%s %d is out of range [%d, %d]", key, v, lo, hi)
	}
}

func checkColor(res *common.ValidationResult, key, v string) {
	if v != "" && !css.IsHexColor(v) {
		res.Addf("%s %q is not a hex color", key, v)
	}
}

func sanitizeColor(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	if c, ok := css.NormalizeColor(v); ok {
		return c
	}
	return def
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case float32:
		return int(math.Round(float64(v))), nil
	case float64:
		return int(math.Round(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return int(math.Round(f)), nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimSuffix(strings.TrimSuffix(s, "px"), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, err
		}
		return int(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
