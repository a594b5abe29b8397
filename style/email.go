package style

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/css"
	"mailbuilder/ident"
)

// Email wide property keys accepted by EmailStyles.Set.
const (
	KeyFontFamily   = "fontFamily"
	KeyFallbackFont = "fallbackFont"
	KeyBodyColor    = "bodyColor"
)

// EmailRecord holds presentation applied to the whole message. BodyColor is
// the default text color.
type EmailRecord struct {
	FontFamily      string `json:"fontFamily" yaml:"fontFamily"`
	FallbackFont    string `json:"fallbackFont" yaml:"fallbackFont"`
	PaddingTop      int    `json:"paddingTop" yaml:"paddingTop"`
	PaddingRight    int    `json:"paddingRight" yaml:"paddingRight"`
	PaddingBottom   int    `json:"paddingBottom" yaml:"paddingBottom"`
	PaddingLeft     int    `json:"paddingLeft" yaml:"paddingLeft"`
	MarginTop       int    `json:"marginTop" yaml:"marginTop"`
	MarginRight     int    `json:"marginRight" yaml:"marginRight"`
	MarginBottom    int    `json:"marginBottom" yaml:"marginBottom"`
	MarginLeft      int    `json:"marginLeft" yaml:"marginLeft"`
	BackgroundColor string `json:"backgroundColor" yaml:"backgroundColor"`
	BodyColor       string `json:"bodyColor" yaml:"bodyColor"`
	BorderColor     string `json:"borderColor" yaml:"borderColor"`
	BorderWidth     int    `json:"borderWidth" yaml:"borderWidth"`
	BorderRadius    int    `json:"borderRadius" yaml:"borderRadius"`
	ClassName       string `json:"className,omitempty" yaml:"className,omitempty"`
}

// DefaultEmail holds email wide defaults.
var DefaultEmail = EmailRecord{
	FontFamily:      "Arial",
	FallbackFont:    "sans-serif",
	PaddingTop:      24,
	PaddingRight:    24,
	PaddingBottom:   24,
	PaddingLeft:     24,
	BackgroundColor: "#ffffff",
	BodyColor:       "#000000",
	BorderColor:     "#e5e5e5",
}

func (e *EmailRecord) intField(key string) *int {
	switch key {
	case KeyPaddingTop:
		return &e.PaddingTop
	case KeyPaddingRight:
		return &e.PaddingRight
	case KeyPaddingBottom:
		return &e.PaddingBottom
	case KeyPaddingLeft:
		return &e.PaddingLeft
	case KeyMarginTop:
		return &e.MarginTop
	case KeyMarginRight:
		return &e.MarginRight
	case KeyMarginBottom:
		return &e.MarginBottom
	case KeyMarginLeft:
		return &e.MarginLeft
	case KeyBorderWidth:
		return &e.BorderWidth
	case KeyBorderRadius:
		return &e.BorderRadius
	}
	return nil
}

func (e *EmailRecord) set(key string, value any) error {
	switch key {
	case KeyFontFamily, KeyFallbackFont, KeyBackgroundColor, KeyBodyColor, KeyBorderColor:
		s, err := toString(value)
		if err != nil {
			return err
		}
		switch key {
		case KeyFontFamily:
			e.FontFamily = s
		case KeyFallbackFont:
			e.FallbackFont = s
		case KeyBackgroundColor:
			e.BackgroundColor = s
		case KeyBodyColor:
			e.BodyColor = s
		default:
			e.BorderColor = s
		}
		return nil
	}
	dst := e.intField(key)
	if dst == nil {
		return fmt.Errorf("unknown email style property %q", key)
	}
	v, err := toInt(value)
	if err != nil {
		return fmt.Errorf("bad value for %q: %w", key, err)
	}
	*dst = v
	return nil
}

// Sanitize clamps and normalizes record, invalid values are taken from def.
func (e EmailRecord) Sanitize(def EmailRecord) EmailRecord {
	e.FontFamily = sanitizeFont(e.FontFamily, def.FontFamily)
	e.FallbackFont = sanitizeFont(e.FallbackFont, def.FallbackFont)
	for _, p := range []*int{
		&e.PaddingTop, &e.PaddingRight, &e.PaddingBottom, &e.PaddingLeft,
		&e.MarginTop, &e.MarginRight, &e.MarginBottom, &e.MarginLeft,
	} {
		*p = clamp(*p, 0, MaxSpacing)
	}
	e.BorderWidth = clamp(e.BorderWidth, 0, MaxBorderWidth)
	e.BorderRadius = clamp(e.BorderRadius, 0, MaxBorderRadius)
	e.BackgroundColor = sanitizeColor(e.BackgroundColor, def.BackgroundColor)
	e.BodyColor = sanitizeColor(e.BodyColor, def.BodyColor)
	e.BorderColor = sanitizeColor(e.BorderColor, def.BorderColor)
	return e
}

// Validate reports malformed and out of range properties.
func (e EmailRecord) Validate() common.ValidationResult {
	res := common.NewValidationResult()
	if strings.TrimSpace(e.FontFamily) == "" {
		res.Addf("%s is empty", KeyFontFamily)
	}
	if strings.ContainsAny(e.FontFamily+e.FallbackFont, ";{}<>") {
		res.Addf("font names contain forbidden characters")
	}
	for _, key := range []string{
		KeyPaddingTop, KeyPaddingRight, KeyPaddingBottom, KeyPaddingLeft,
		KeyMarginTop, KeyMarginRight, KeyMarginBottom, KeyMarginLeft,
	} {
		checkRange(&res, key, *e.intField(key), 0, MaxSpacing)
	}
	checkRange(&res, KeyBorderWidth, e.BorderWidth, 0, MaxBorderWidth)
	checkRange(&res, KeyBorderRadius, e.BorderRadius, 0, MaxBorderRadius)
	checkColor(&res, KeyBackgroundColor, e.BackgroundColor)
	checkColor(&res, KeyBodyColor, e.BodyColor)
	checkColor(&res, KeyBorderColor, e.BorderColor)
	return res
}

func sanitizeFont(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, ";{}<>") {
		return def
	}
	return v
}

// EmailStyles holds the single email wide record of an editing session.
type EmailStyles struct {
	rec   EmailRecord
	seed  string
	alloc *ident.Allocator
	log   *zap.Logger
}

// NewEmailStyles creates record with defaults. Non empty seed makes generated
// class name deterministic.
func NewEmailStyles(seed string, alloc *ident.Allocator, log *zap.Logger) *EmailStyles {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = ident.Default
	}
	return &EmailStyles{rec: DefaultEmail, seed: seed, alloc: alloc, log: log.Named("email-styles")}
}

// Get returns current record. Class name is generated on first access.
func (s *EmailStyles) Get() EmailRecord {
	s.ClassName()
	return s.rec
}

// ClassName returns generated class name, it stays stable for the lifetime
// of the session.
func (s *EmailStyles) ClassName() string {
	if s.rec.ClassName == "" {
		s.rec.ClassName = s.alloc.NewClassName(s.seed)
	}
	return s.rec.ClassName
}

// Set updates single property, see Registry.Set for contract.
func (s *EmailStyles) Set(key string, value any) EmailRecord {
	rec := s.rec
	if err := rec.set(key, value); err != nil {
		s.log.Warn("Ignoring email style update", zap.String("key", key), zap.Error(err))
		return s.Get()
	}
	s.rec = rec.Sanitize(DefaultEmail)
	return s.Get()
}

// Replace sets every property at once keeping class name.
func (s *EmailStyles) Replace(rec EmailRecord) EmailRecord {
	name := s.ClassName()
	s.rec = rec.Sanitize(DefaultEmail)
	s.rec.ClassName = name
	return s.rec
}

// Reset restores defaults keeping class name.
func (s *EmailStyles) Reset() {
	name := s.rec.ClassName
	s.rec = DefaultEmail
	s.rec.ClassName = name
}

// AdoptCSS reads properties from the rule with matching selector (or the
// first rule when selector is empty) of the stylesheet.
func (s *EmailStyles) AdoptCSS(sheet *css.Stylesheet, selector string) bool {
	if sheet == nil || len(sheet.Rules) == 0 {
		return false
	}
	rule := sheet.Rules[0]
	if selector != "" {
		rules := sheet.RulesBySelector(selector)
		if len(rules) == 0 {
			return false
		}
		rule = rules[len(rules)-1]
	}

	rec := s.rec
	for _, d := range rule.Declarations {
		switch d.Property {
		case "font-family":
			families := strings.Split(d.Value.Raw, ",")
			rec.FontFamily = strings.Trim(strings.TrimSpace(families[0]), `"'`)
			if len(families) > 1 {
				rec.FallbackFont = strings.Trim(strings.TrimSpace(families[len(families)-1]), `"'`)
			}
		case "background-color":
			rec.BackgroundColor = d.Value.Raw
		case "color":
			rec.BodyColor = d.Value.Raw
		case "border-color":
			rec.BorderColor = d.Value.Raw
		default:
			if key, ok := boxKeys[d.Property]; ok && d.Value.IsNumeric() {
				*rec.intField(key) = int(d.Value.Value)
			}
		}
	}
	s.Replace(rec)
	return true
}

var boxKeys = map[string]string{
	"padding-top":    KeyPaddingTop,
	"padding-right":  KeyPaddingRight,
	"padding-bottom": KeyPaddingBottom,
	"padding-left":   KeyPaddingLeft,
	"margin-top":     KeyMarginTop,
	"margin-right":   KeyMarginRight,
	"margin-bottom":  KeyMarginBottom,
	"margin-left":    KeyMarginLeft,
	"border-width":   KeyBorderWidth,
	"border-radius":  KeyBorderRadius,
}
