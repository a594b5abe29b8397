package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"mailbuilder/style"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ImagesConfig struct {
		Inline                bool        `yaml:"inline"`
		MaxWidth              int         `yaml:"max_width" validate:"min=0,max=4000"`
		Format                ImageFormat `yaml:"format" validate:"gte=0"`
		JPEGQuality           int         `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
		RemovePNGTransparency bool        `yaml:"remove_png_transparency"`
	}

	DocumentConfig struct {
		MaxWidth              int          `yaml:"max_width" validate:"min=200,max=2000"`
		BackgroundColor       string       `yaml:"background_color" validate:"required,hexcolor"`
		ContentBackground     string       `yaml:"content_background" validate:"required,hexcolor"`
		Lang                  string       `yaml:"lang" validate:"required"`
		PreheaderLength       int          `yaml:"preheader_length" validate:"min=0,max=500"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		Images                ImagesConfig `yaml:"images"`
	}

	StylesConfig struct {
		AdoptInline  bool              `yaml:"adopt_inline"`
		HistoryDepth int               `yaml:"history_depth" validate:"min=1,max=1000"`
		Email        style.EmailRecord `yaml:"email"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Styles    StylesConfig   `yaml:"styles"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// ImagesMaxWidth returns effective width limit for prepared images.
func (conf *DocumentConfig) ImagesMaxWidth() int {
	if conf.Images.MaxWidth > 0 {
		return conf.Images.MaxWidth
	}
	return conf.MaxWidth
}

// checkStyles reports email defaults which would be altered by sanitizer,
// so bad configuration is visible instead of silently fixed.
func checkStyles(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	res := cfg.Styles.Email.Validate()
	for _, e := range res.Errors {
		sl.ReportError(cfg.Styles.Email, "Email", "Email", "style", e)
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkStyles)); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
