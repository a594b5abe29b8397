package debug

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		depth  int
		format string
		args   []any
		want   string
	}{
		{0, "template", nil, "template\n"},
		{1, "blocks: %d of %d valid", []any{2, 3}, "  blocks: 2 of 3 valid\n"},
		{2, "%d id=%s type=%s", []any{0, "a1", "text"}, "    0 id=a1 type=text\n"},
	}
	for _, tt := range tests {
		tw := NewTreeWriter()
		tw.Line(tt.depth, tt.format, tt.args...)
		if got := tw.String(); got != tt.want {
			t.Errorf("Line(%d, %q) = %q, want %q", tt.depth, tt.format, got, tt.want)
		}
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		value string
		want  string
	}{
		{"empty", 0, "", "subject: \n"},
		{"plain", 1, "Welcome aboard", "  subject: \"Welcome aboard\"\n"},
		{"quotes and newline", 2, "say \"hi\"\nbye", "    subject: \"say \\\"hi\\\"\\nbye\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, "subject", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Accumulates(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "template")
	tw.TextBlock(1, "name", "welcome")
	tw.Line(1, "blocks: %d", 1)

	want := "template\n  name: \"welcome\"\n  blocks: 1\n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Node(t *testing.T) {
	nodes, err := html.ParseFragment(strings.NewReader(
		`<p data-block-id="a1" style="color: #000000">Hello <b>you</b></p><!-- note -->`),
		&html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		t.Fatal(err)
	}

	tw := NewTreeWriter()
	for _, n := range nodes {
		tw.Node(1, n)
	}

	want := "  <p data-block-id=\"a1\" style=\"color: #000000\">\n" +
		"    #text: \"Hello \"\n" +
		"    <b>\n" +
		"      #text: \"you\"\n"
	if got := tw.String(); got != want {
		t.Errorf("Node() =\n%s\nwant\n%s", got, want)
	}
}
