package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	d := cfg.Document
	if d.MaxWidth != 600 {
		t.Errorf("MaxWidth = %d, want 600", d.MaxWidth)
	}
	if d.BackgroundColor != "#f4f4f4" || d.ContentBackground != "#ffffff" {
		t.Errorf("colors = %q/%q", d.BackgroundColor, d.ContentBackground)
	}
	if d.Lang != "en" {
		t.Errorf("Lang = %q, want en", d.Lang)
	}
	if d.OutputNameTemplate != "{{ .Name | default .Source }}" {
		t.Errorf("OutputNameTemplate was expanded: %q", d.OutputNameTemplate)
	}
	if d.Images.Format != ImageFormatAuto {
		t.Errorf("Images.Format = %v, want auto", d.Images.Format)
	}
	if d.Images.JPEGQuality != 85 {
		t.Errorf("JPEGQuality = %d, want 85", d.Images.JPEGQuality)
	}
	if got := d.ImagesMaxWidth(); got != 600 {
		t.Errorf("ImagesMaxWidth() = %d, want document width", got)
	}

	s := cfg.Styles
	if !s.AdoptInline || s.HistoryDepth != 100 {
		t.Errorf("Styles = %+v", s)
	}
	if s.Email.FontFamily != "Arial" || s.Email.PaddingTop != 24 {
		t.Errorf("Email = %+v", s.Email)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmp := t.TempDir()
	path := writeConfig(t, `version: 1
document:
  max_width: 640
  lang: de
  preheader_length: 80
  images:
    inline: true
    max_width: 320
    format: jpeg
    jpeg_quality_level: 70
styles:
  email:
    fontFamily: Georgia
    bodyColor: "#333333"
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(tmp, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(tmp, "report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.MaxWidth != 640 || cfg.Document.Lang != "de" {
		t.Errorf("Document = %+v", cfg.Document)
	}
	// values not present in file come from template
	if cfg.Document.BackgroundColor != "#f4f4f4" {
		t.Errorf("BackgroundColor = %q, want default", cfg.Document.BackgroundColor)
	}
	img := cfg.Document.Images
	if !img.Inline || img.Format != ImageFormatJpeg || img.JPEGQuality != 70 {
		t.Errorf("Images = %+v", img)
	}
	if got := cfg.Document.ImagesMaxWidth(); got != 320 {
		t.Errorf("ImagesMaxWidth() = %d, want 320", got)
	}
	if cfg.Styles.Email.FontFamily != "Georgia" || cfg.Styles.Email.BodyColor != "#333333" {
		t.Errorf("Email = %+v", cfg.Styles.Email)
	}
	if cfg.Styles.Email.PaddingTop != 24 {
		t.Errorf("PaddingTop = %d, want default 24", cfg.Styles.Email.PaddingTop)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  max_width: 600\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad color", "version: 1\ndocument:\n  background_color: blue\n"},
		{"bad image format", "version: 1\ndocument:\n  images:\n    format: gif\n"},
		{"jpeg quality range", "version: 1\ndocument:\n  images:\n    jpeg_quality_level: 10\n"},
		{"email padding range", "version: 1\nstyles:\n  email:\n    paddingTop: 500\n"},
		{"email font", "version: 1\nstyles:\n  email:\n    fontFamily: 'x;}'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}
	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "output_name_template") {
		t.Error("Prepare() output misses document section")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.Images.Format = ImageFormatPng

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "format: png") {
		t.Errorf("enum not marshaled by name:\n%s", data)
	}

	back, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if back.Document.Images.Format != ImageFormatPng {
		t.Errorf("Format = %v after round trip", back.Document.Images.Format)
	}
}

func TestImageFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ImageFormat
		ext  string
	}{
		{"auto", ImageFormatAuto, ""},
		{"png", ImageFormatPng, ".png"},
		{"jpeg", ImageFormatJpeg, ".jpg"},
	}
	for _, tt := range tests {
		got, err := ParseImageFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseImageFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want || got.String() != tt.in || got.Ext() != tt.ext {
			t.Errorf("ParseImageFormat(%q) = %v (%q)", tt.in, got, got.Ext())
		}
	}
	if _, err := ParseImageFormat("bmp"); err == nil {
		t.Error("expected error for unknown format")
	}
}
