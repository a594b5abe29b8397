package mail

import (
	"strings"

	"github.com/osteele/liquid"
	"go.uber.org/zap"
)

// Personalizer expands Liquid merge tags ({{ first_name }}) in block text,
// urls and alternative text. Output is escaped later by the renderer.
type Personalizer struct {
	engine *liquid.Engine
	log    *zap.Logger
}

// NewPersonalizer creates personalizer with strict variables off: unknown
// tags render as empty strings.
func NewPersonalizer(log *zap.Logger) *Personalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Personalizer{engine: liquid.NewEngine(), log: log.Named("merge")}
}

// Apply returns personalized copies of blocks. Block whose template fails to
// parse or render is returned unchanged.
func (p *Personalizer) Apply(blocks []Block, data map[string]any) []Block {
	out := make([]Block, 0, len(blocks))
	bindings := liquid.Bindings(data)
	for _, b := range blocks {
		orig := b
		b = b.Clone()
		ok := true
		for _, field := range []*string{&b.Content.Text, &b.Content.URL, &b.Content.Alt, &b.Content.Src} {
			if !strings.Contains(*field, "{{") && !strings.Contains(*field, "{%") {
				continue
			}
			rendered, err := p.engine.ParseAndRenderString(*field, bindings)
			if err != nil {
				p.log.Warn("Unable to expand merge tags, leaving block unchanged", zap.String("id", b.ID), zap.Error(err))
				ok = false
				break
			}
			*field = rendered
		}
		if !ok {
			out = append(out, orig.Clone())
			continue
		}
		out = append(out, b)
	}
	return out
}

// Personalize expands merge tags using throwaway personalizer.
func Personalize(blocks []Block, data map[string]any, log *zap.Logger) []Block {
	return NewPersonalizer(log).Apply(blocks, data)
}
