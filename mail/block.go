// Package mail turns flat lists of content blocks into email HTML. It also
// validates, personalizes and (de)serializes them and offers a headless
// editing model for environments without a document editor.
package mail

import (
	"bytes"
	"encoding/json"
	"maps"

	"gopkg.in/yaml.v3"

	"mailbuilder/common"
)

// Content is the payload of a block. In JSON and YAML it may be written as a
// bare string, which sets Text only.
type Content struct {
	Text   string             `json:"text,omitempty" yaml:"text,omitempty" ion:"text"`
	Level  int                `json:"level,omitempty" yaml:"level,omitempty" ion:"level"`
	Src    string             `json:"src,omitempty" yaml:"src,omitempty" ion:"src"`
	Alt    string             `json:"alt,omitempty" yaml:"alt,omitempty" ion:"alt"`
	Width  int                `json:"width,omitempty" yaml:"width,omitempty" ion:"width"`
	Height int                `json:"height,omitempty" yaml:"height,omitempty" ion:"height"`
	URL    string             `json:"url,omitempty" yaml:"url,omitempty" ion:"url"`
	Style  common.BorderStyle `json:"style,omitempty" yaml:"style,omitempty" ion:"style"`

	bare bool
}

// Bare reports whether content was supplied as a plain string.
func (c Content) Bare() bool {
	return c.bare
}

// Text makes bare string content.
func Text(s string) Content {
	return Content{Text: s, bare: true}
}

type contentFields Content

// UnmarshalJSON accepts either string or object.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	}
	var f contentFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Content(f)
	return nil
}

// MarshalJSON writes bare content back as a string.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.bare && c.onlyText() {
		return json.Marshal(c.Text)
	}
	return json.Marshal(contentFields(c))
}

// UnmarshalYAML accepts either scalar or mapping.
func (c *Content) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Tag == "!!null" {
			*c = Content{}
			return nil
		}
		*c = Text(value.Value)
		return nil
	}
	var f contentFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	*c = Content(f)
	return nil
}

// MarshalYAML writes bare content back as a string.
func (c Content) MarshalYAML() (any, error) {
	if c.bare && c.onlyText() {
		return c.Text, nil
	}
	return contentFields(c), nil
}

func (c Content) onlyText() bool {
	f := c
	f.Text, f.bare = "", false
	return f == Content{}
}

// Block is a serialization unit of an email.
type Block struct {
	ID      string           `json:"id" yaml:"id" ion:"id"`
	Type    common.BlockType `json:"type" yaml:"type" ion:"type"`
	Content Content          `json:"content" yaml:"content" ion:"content"`
	// Styles are camelCase CSS properties. Numbers are treated as pixels
	// unless property is unitless.
	Styles map[string]any `json:"styles,omitempty" yaml:"styles,omitempty" ion:"styles"`
}

// Clone returns deep copy of the block.
func (b Block) Clone() Block {
	if b.Styles != nil {
		b.Styles = maps.Clone(b.Styles)
	}
	return b
}

func cloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
	}
	return out
}
