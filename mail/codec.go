package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
	"gopkg.in/yaml.v3"

	"mailbuilder/style"
)

// Template is a persisted email: metadata, email wide styles and ordered
// blocks.
type Template struct {
	Name      string             `json:"name,omitempty" yaml:"name,omitempty" ion:"name"`
	Subject   string             `json:"subject,omitempty" yaml:"subject,omitempty" ion:"subject"`
	Preheader string             `json:"preheader,omitempty" yaml:"preheader,omitempty" ion:"preheader"`
	Email     *style.EmailRecord `json:"email,omitempty" yaml:"email,omitempty" ion:"email"`
	Blocks    []Block            `json:"blocks" yaml:"blocks" ion:"blocks"`
}

// Codec names serialization format of a template.
type Codec string

// Supported codecs.
const (
	CodecJSON Codec = "json"
	CodecYAML Codec = "yaml"
	CodecIon  Codec = "ion"
)

// CodecFromPath selects codec by file extension.
func CodecFromPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return CodecJSON, nil
	case ".yaml", ".yml":
		return CodecYAML, nil
	case ".ion":
		return CodecIon, nil
	}
	return "", fmt.Errorf("unsupported template file extension %q", filepath.Ext(path))
}

// IsTemplateFile reports whether path has extension of a known codec.
func IsTemplateFile(path string) bool {
	_, err := CodecFromPath(path)
	return err == nil
}

// Decode reads template in requested format.
func Decode(r io.Reader, codec Codec) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read template: %w", err)
	}

	var t Template
	switch codec {
	case CodecJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("unable to decode json template: %w", err)
		}
		t.Blocks = normalizeNumbers(t.Blocks)
	case CodecYAML:
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("unable to decode yaml template: %w", err)
		}
	case CodecIon:
		if err := ion.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("unable to decode ion template: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}
	return &t, nil
}

// Encode writes template in requested format. Ion is written as text.
func Encode(w io.Writer, t *Template, codec Codec) error {
	var (
		data []byte
		err  error
	)
	switch codec {
	case CodecJSON:
		data, err = json.MarshalIndent(t, "", "  ")
		data = append(data, '\n')
	case CodecYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(t); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case CodecIon:
		data, err = ion.MarshalText(t)
	default:
		return fmt.Errorf("unsupported codec %q", codec)
	}
	if err != nil {
		return fmt.Errorf("unable to encode %s template: %w", codec, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write template: %w", err)
	}
	return nil
}

// Load reads template file, codec is selected by extension.
func Load(path string) (*Template, error) {
	codec, err := CodecFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open template: %w", err)
	}
	defer f.Close()
	return Decode(f, codec)
}

// Save writes template file, codec is selected by extension.
func Save(path string, t *Template) (err error) {
	codec, err := CodecFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create template: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Encode(f, t, codec)
}

// normalizeNumbers converts json.Number style values to int64 or float64.
func normalizeNumbers(blocks []Block) []Block {
	for i := range blocks {
		for k, v := range blocks[i].Styles {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if iv, err := n.Int64(); err == nil {
				blocks[i].Styles[k] = iv
			} else if fv, err := n.Float64(); err == nil {
				blocks[i].Styles[k] = fv
			}
		}
	}
	return blocks
}
