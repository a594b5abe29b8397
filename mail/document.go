package mail

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DocumentOptions controls the shell wrapped around rendered blocks.
type DocumentOptions struct {
	Title             string
	Preheader         string
	BackgroundColor   string
	ContentBackground string
	MaxWidth          int
	Lang              string
	// EmailCSS is injected into <style> block, ClassName is put on the
	// content container so the rule applies.
	EmailCSS  string
	ClassName string
}

// Documented defaults of the document shell.
const (
	DefaultBackgroundColor   = "#f4f4f4"
	DefaultContentBackground = "#ffffff"
	DefaultMaxWidth          = 600
	DefaultLang              = "en"
)

// WithDefaults fills empty options.
func (o DocumentOptions) WithDefaults() DocumentOptions {
	if o.BackgroundColor == "" {
		o.BackgroundColor = DefaultBackgroundColor
	}
	if o.ContentBackground == "" {
		o.ContentBackground = DefaultContentBackground
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Lang == "" {
		o.Lang = DefaultLang
	}
	return o
}

// ToDocument renders blocks and wraps them into complete HTML document.
func ToDocument(blocks []Block, opts DocumentOptions) string {
	return WrapDocument(ToHTML(blocks), opts)
}

// WrapDocument wraps already rendered fragment into complete HTML document
// with fixed width container suitable for mail clients.
func WrapDocument(fragment string, opts DocumentOptions) string {
	opts = opts.WithDefaults()
	esc := html.EscapeString
	width := strconv.Itoa(opts.MaxWidth)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html lang="` + esc(opts.Lang) + `" xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	sb.WriteString("<head>\n")
	sb.WriteString(`<meta charset="utf-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	sb.WriteString(`<meta http-equiv="X-UA-Compatible" content="IE=edge">` + "\n")
	sb.WriteString(`<meta name="x-apple-disable-message-reformatting">` + "\n")
	sb.WriteString("<title>" + esc(opts.Title) + "</title>\n")
	if css := strings.TrimSpace(opts.EmailCSS); css != "" && !strings.Contains(strings.ToLower(css), "</style") {
		sb.WriteString("<style>\n" + css + "\n</style>\n")
	}
	sb.WriteString("</head>\n")
	sb.WriteString(`<body style="margin: 0; padding: 0; background-color: ` + esc(opts.BackgroundColor) + `">` + "\n")
	if opts.Preheader != "" {
		sb.WriteString(`<div style="display: none; max-height: 0; overflow: hidden; mso-hide: all">` + esc(opts.Preheader) + "</div>\n")
	}
	sb.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="background-color: ` +
		esc(opts.BackgroundColor) + `">` + "\n")
	sb.WriteString(`<tr><td align="center">` + "\n")
	sb.WriteString(`<table role="presentation"`)
	if opts.ClassName != "" {
		sb.WriteString(` class="` + esc(opts.ClassName) + `"`)
	}
	sb.WriteString(` width="` + width + `" cellpadding="0" cellspacing="0" border="0" style="max-width: ` + width +
		`px; width: 100%; background-color: ` + esc(opts.ContentBackground) + `">` + "\n")
	sb.WriteString("<tr><td>\n")
	sb.WriteString(fragment)
	sb.WriteString("\n</td></tr>\n</table>\n</td></tr>\n</table>\n</body>\n</html>\n")
	return sb.String()
}
