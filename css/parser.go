package css

import (
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets and inline style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Only plain rulesets are kept,
// @-rules are skipped with a warning.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInputBytes(data), false)
	var pending []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			pending = append(pending, parseSelectors(data, parser.Values())...)
			if gt == css.QualifiedRuleGrammar {
				// selector list continues, ruleset starts later
				continue
			}
			decls := p.parseDeclarations(parser)
			for _, sel := range pending {
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: append([]Declaration(nil), decls...)})
			}
			pending = nil
		}
	}
}

// ParseInline parses content of the style attribute. Invalid declarations
// are skipped.
func (p *Parser) ParseInline(style string) []Declaration {
	if strings.TrimSpace(style) == "" {
		return nil
	}
	var decls []Declaration
	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("Inline style parse error", zap.String("style", style), zap.Error(err))
			}
			return decls
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = append(decls, Declaration{
					Property: strings.ToLower(string(data)),
					Value:    parsePropertyValue(values),
				})
			}
		}
	}
}

func parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = append(decls, Declaration{
					Property: strings.ToLower(string(data)),
					Value:    parsePropertyValue(values),
				})
			}
		case css.CustomPropertyGrammar:
			continue
		}
	}
}

func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	val := Value{Raw: raw}

	significant := tokens[:0:0]
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			significant = append(significant, t)
		}
	}
	if len(significant) != 1 {
		val.Keyword = raw
		return val
	}

	t := significant[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	case css.HashToken:
		val.Keyword = strings.ToLower(string(t.Data))
	default:
		val.Keyword = raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
