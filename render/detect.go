package render

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"mailbuilder/mail"
)

type sourceKind int

const (
	kindNone sourceKind = iota
	kindTemplate
	kindHTML
)

// kindOf detects source type by name only, sources are text files without
// reliable signatures.
func kindOf(name string) sourceKind {
	if mail.IsTemplateFile(name) {
		return kindTemplate
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return kindHTML
	}
	return kindNone
}

// isArchiveFile checks zip signature of the file, extension is ignored so
// bundles may be named anything.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.IsType(head[:n], matchers.TypeZip), nil
}
