//go:build !windows

package config

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"
)

// CleanFileName removes characters not allowed in output file names. Leading
// dots are dropped so rendered emails never become hidden files.
func CleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, strings.TrimSpace(in)), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
