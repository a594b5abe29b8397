package state

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"gopkg.in/yaml.v3"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// SetCharset selects encoding of html sources by its WHATWG name or alias.
// Empty name and UTF-8 reset it.
func (e *LocalEnv) SetCharset(name string) error {
	if name == "" {
		e.CodePage = nil
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if enc == unicode.UTF8 {
		enc = nil
	}
	e.CodePage = enc
	return nil
}

// DecodeSource converts html source to UTF-8 using selected code page.
func (e *LocalEnv) DecodeSource(data []byte) ([]byte, error) {
	if e.CodePage == nil {
		return data, nil
	}
	out, err := e.CodePage.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode source: %w", err)
	}
	return out, nil
}

// LoadData reads merge tag values from YAML or JSON file.
func (e *LocalEnv) LoadData(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read merge data: %w", err)
	}
	data := make(map[string]any)
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("unable to parse merge data (%s): %w", path, err)
		}
	}
	e.Data = data
	return nil
}
