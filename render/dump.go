package render

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"mailbuilder/blocks"
	"mailbuilder/mail"
	"mailbuilder/state"
	"mailbuilder/utils/debug"
)

// dumpTemplate describes sanitized blocks for the debug report.
func dumpTemplate(t *mail.Template, valid []mail.Block) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "template")
	tw.TextBlock(1, "name", t.Name)
	tw.TextBlock(1, "subject", t.Subject)
	tw.Line(1, "blocks: %d of %d valid", len(valid), len(t.Blocks))
	for i, b := range valid {
		tw.Line(2, "%d id=%s type=%s", i, b.ID, b.Type)
		c := b.Content
		if c.Text != "" {
			tw.TextBlock(3, "text", c.Text)
		}
		if c.Level != 0 {
			tw.Line(3, "level: %d", c.Level)
		}
		if c.Src != "" {
			tw.TextBlock(3, "src", truncateData(c.Src))
			tw.Line(3, "size: %dx%d", c.Width, c.Height)
		}
		if c.URL != "" {
			tw.TextBlock(3, "url", c.URL)
		}
		for _, k := range slices.Sorted(maps.Keys(b.Styles)) {
			tw.Line(3, "style %s: %v", k, b.Styles[k])
		}
	}
	return tw.String()
}

// dumpSession describes document tree and style records of the session.
func dumpSession(s *blocks.Session, out *blocks.Export) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "document")
	for c := s.Editor.Snapshot().Root().FirstChild; c != nil; c = c.NextSibling {
		tw.Node(1, c)
	}
	tw.Line(0, "styles")
	for _, id := range slices.Sorted(maps.Keys(out.Styles)) {
		tw.Line(1, "%s %+v", id, out.Styles[id])
	}
	tw.Line(0, "email")
	tw.Line(1, "%+v", s.Email.Get())
	if len(out.Collected) > 0 {
		tw.Line(0, "collected: %v", out.Collected)
	}
	return tw.String()
}

func truncateData(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}

// storeTree puts dump into debug report. Sources rendered repeatedly (watch)
// get versioned names.
func storeTree(env *state.LocalEnv, src *Source, tree string) {
	if env.Rpt == nil || tree == "" {
		return
	}
	name := fmt.Sprintf("tree/%s.txt", filepath.ToSlash(src.Name))
	if env.Rpt.Has(name) {
		name = fmt.Sprintf("tree/%s-%d.txt", filepath.ToSlash(src.Name), time.Now().UnixNano())
	}
	env.Rpt.StoreData(name, []byte(tree))
}
