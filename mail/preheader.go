package mail

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"mailbuilder/common"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

func sentenceTokenizer() *sentences.DefaultSentenceTokenizer {
	tokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err == nil {
			tokenizer = t
		}
	})
	return tokenizer
}

// Preheader builds preview line from leading text blocks: as many whole
// sentences as fit into maxLen characters. When even the first sentence does
// not fit it is cut at a word boundary and ellipsis is appended.
func Preheader(blocks []Block, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == common.BlockTypeText && strings.TrimSpace(b.Content.Text) != "" {
			texts = append(texts, strings.Join(strings.Fields(b.Content.Text), " "))
		}
	}
	if len(texts) == 0 {
		return ""
	}
	text := strings.Join(texts, " ")

	var parts []string
	if t := sentenceTokenizer(); t != nil {
		for _, s := range t.Tokenize(text) {
			if st := strings.TrimSpace(s.Text); st != "" {
				parts = append(parts, st)
			}
		}
	} else {
		parts = []string{text}
	}

	var sb strings.Builder
	for _, s := range parts {
		n := utf8.RuneCountInString(sb.String())
		if n > 0 {
			if n+1+utf8.RuneCountInString(s) > maxLen {
				break
			}
			sb.WriteByte(' ')
		} else if utf8.RuneCountInString(s) > maxLen {
			return truncate(s, maxLen)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	// leave room for ellipsis
	cut := string(runes[:max(maxLen-1, 0)])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
