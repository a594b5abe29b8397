// Package debug produces human readable dumps of documents and templates
// for troubleshooting reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Node writes HTML subtree: one line per element with its attributes, text
// nodes quoted, whitespace only text and comments skipped.
func (tw TreeWriter) Node(depth int, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			tw.TextBlock(depth, "#text", n.Data)
		}
		return
	case html.ElementNode:
		tw.indent(depth)
		tw.w.WriteByte('<')
		tw.w.WriteString(n.Data)
		for _, a := range n.Attr {
			tw.w.WriteByte(' ')
			tw.w.WriteString(a.Key)
			tw.w.WriteByte('=')
			tw.w.WriteString(strconv.Quote(a.Val))
		}
		tw.w.WriteString(">\n")
		depth++
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tw.Node(depth, c)
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
