package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mailbuilder/assets"
	"mailbuilder/blocks"
	"mailbuilder/common"
	"mailbuilder/config"
	"mailbuilder/doc"
	"mailbuilder/mail"
	"mailbuilder/state"
	"mailbuilder/style"
)

// Source is a single input item. Name is the path relative to the processed
// root (directory or archive) or base name when a file was given directly.
type Source struct {
	Name string
	// Path is the file source was read from, empty for archive entries.
	Path string
	Data []byte
	// Load reads images referenced by the source, nil disables image
	// preparation.
	Load assets.Loader
}

// Result is a rendered source.
type Result struct {
	Source    string
	Name      string
	Subject   string
	Lang      string
	Preheader string
	Fragment  string
	Document  string
	Images    []*assets.Image
	// Dropped counts invalid blocks removed by sanitizer.
	Dropped int
	// Tree is a debug dump, only produced when report is requested.
	Tree string
}

// Build renders a single source, templates and HTML fragments are supported.
func Build(src *Source, env *state.LocalEnv, log *zap.Logger) (*Result, error) {
	switch kindOf(src.Name) {
	case kindTemplate:
		codec, err := mail.CodecFromPath(src.Name)
		if err != nil {
			return nil, err
		}
		t, err := mail.Decode(bytes.NewReader(src.Data), codec)
		if err != nil {
			return nil, fmt.Errorf("unable to decode template (%s): %w", src.Name, err)
		}
		return buildTemplate(t, src, env, log)
	case kindHTML:
		return buildHTML(src, env, log)
	}
	return nil, fmt.Errorf("unsupported source type (%s)", src.Name)
}

func buildTemplate(t *mail.Template, src *Source, env *state.LocalEnv, log *zap.Logger) (*Result, error) {
	cfg := &env.Cfg.Document

	res := &Result{
		Source:  src.Name,
		Name:    t.Name,
		Subject: t.Subject,
		Lang:    cfg.Lang,
	}
	if res.Name == "" {
		res.Name = strings.TrimSuffix(filepath.Base(src.Name), filepath.Ext(src.Name))
	}

	valid, err := mail.Sanitize(t.Blocks, log)
	if err != nil {
		res.Dropped = len(multierr.Errors(err))
		log.Warn("Template has invalid blocks", zap.String("source", src.Name), zap.Int("dropped", res.Dropped))
	}
	if len(valid) == 0 && len(t.Blocks) > 0 {
		return nil, fmt.Errorf("no valid blocks in template (%s): %w", src.Name, err)
	}

	if env.Data != nil {
		valid = mail.Personalize(valid, env.Data, log)
	}
	if src.Load != nil {
		prep := assets.NewPreparer(&cfg.Images, cfg.ImagesMaxWidth(), log)
		valid = prep.Prepare(valid, src.Load)
		res.Images = prep.Images()
		if cfg.Images.Inline {
			res.Images = nil
		}
	}

	res.Preheader = t.Preheader
	if res.Preheader == "" {
		res.Preheader = mail.Preheader(valid, cfg.PreheaderLength)
	}

	if env.Rpt != nil {
		res.Tree = dumpTemplate(t, valid)
	}

	email := emailStyles(t.Email, res.Name, env, log)
	res.Fragment = mail.ToHTML(valid)
	res.Document = mail.WrapDocument(res.Fragment, documentOptions(cfg, title(res), res.Preheader, email))
	return res, nil
}

func buildHTML(src *Source, env *state.LocalEnv, log *zap.Logger) (*Result, error) {
	cfg := env.Cfg

	data, err := env.DecodeSource(src.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode source (%s): %w", src.Name, err)
	}

	name := strings.TrimSuffix(filepath.Base(src.Name), filepath.Ext(src.Name))
	s, err := blocks.NewSession(string(data), blocks.SessionOptions{
		Seed:         name,
		AdoptInline:  cfg.Styles.AdoptInline,
		HistoryDepth: cfg.Styles.HistoryDepth,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse source (%s): %w", src.Name, err)
	}
	defer s.Close()

	s.Email.Replace(cfg.Styles.Email)
	out, err := s.Export()
	if err != nil {
		return nil, err
	}
	if len(out.Collected) > 0 {
		log.Debug("Dropped orphaned styles", zap.Int("count", len(out.Collected)))
	}

	text := doc.TextContent(s.Editor.Snapshot().Root())
	res := &Result{
		Source:    src.Name,
		Name:      name,
		Lang:      cfg.Document.Lang,
		Preheader: mail.Preheader([]mail.Block{{Type: common.BlockTypeText, Content: mail.Text(text)}}, cfg.Document.PreheaderLength),
		Fragment:  out.Fragment,
	}
	res.Document = mail.WrapDocument(res.Fragment, documentOptions(&cfg.Document, title(res), res.Preheader, s.Email.Get()))
	if env.Rpt != nil {
		res.Tree = dumpSession(s, out)
	}
	return res, nil
}

// emailStyles returns email wide record: template's own when present,
// configured defaults otherwise. Class name is derived from template name so
// repeated renders produce the same output.
func emailStyles(rec *style.EmailRecord, seed string, env *state.LocalEnv, log *zap.Logger) style.EmailRecord {
	es := style.NewEmailStyles(seed, nil, log)
	if rec != nil {
		return es.Replace(*rec)
	}
	return es.Replace(env.Cfg.Styles.Email)
}

func documentOptions(cfg *config.DocumentConfig, title, preheader string, email style.EmailRecord) mail.DocumentOptions {
	return mail.DocumentOptions{
		Title:             title,
		Preheader:         preheader,
		BackgroundColor:   cfg.BackgroundColor,
		ContentBackground: cfg.ContentBackground,
		MaxWidth:          cfg.MaxWidth,
		Lang:              cfg.Lang,
		EmailCSS:          style.EmailCSS(email),
		ClassName:         email.ClassName,
	}
}

func title(res *Result) string {
	if res.Subject != "" {
		return res.Subject
	}
	return res.Name
}

// Output returns rendered text in requested format, bundles use full
// document.
func (r *Result) Output(format common.OutputFmt) []byte {
	if format == common.OutputFmtFragment {
		return []byte(r.Fragment)
	}
	return []byte(r.Document)
}
