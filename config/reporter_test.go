package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_Close(t *testing.T) {
	tmp := t.TempDir()
	rcfg := ReporterConfig{Destination: filepath.Join(tmp, "report.zip")}
	r, err := rcfg.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(tmp, "template.yaml")
	if err := os.WriteFile(src, []byte("blocks: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(tmp, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("source", src)
	r.StoreData("config.yaml", []byte("version: 1\n"))
	if err := r.StoreCopy("images", dir); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	if err := r.StoreCopy("template", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	temps := append([]string(nil), r.temps...)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, d := range temps {
		if _, err := os.Stat(d); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", d)
		}
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("stored file should not be removed: %v", err)
	}

	zr, err := zip.OpenReader(rcfg.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"MANIFEST", "source", "config.yaml", "images/a.png", "template"} {
		if !strings.Contains(got, want) {
			t.Errorf("report entries %q miss %q", got, want)
		}
	}
	if names[0] != "MANIFEST" {
		t.Errorf("first entry = %q, want MANIFEST", names[0])
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Error("Name on nil report should be empty")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReport_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if r.Has("x") {
		t.Error("empty report has entry")
	}
	r.StoreData("x", []byte("1"))
	if !r.Has("x") {
		t.Error("stored entry is missing")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.StoreData("x", []byte("2"))
}
