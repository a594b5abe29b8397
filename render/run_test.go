package render

import (
	stdzip "archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mailbuilder/archive"
	"mailbuilder/common"
)

func writeZip(t *testing.T, name string, files map[string][]byte) string {
	t.Helper()
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := stdzip.NewWriter(f)
	for n, data := range files {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func exists(t *testing.T, name string) bool {
	t.Helper()
	_, err := os.Stat(name)
	return err == nil
}

// TestProcess_NonExistentPath tests process with non-existent path
func TestProcess_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)

	err := process(ctx, "/nonexistent/path/file.yaml", "", renderTo(t.TempDir(), env.Log), env.Log)
	if err == nil {
		t.Fatal("Expected error for non-existent path, got nil")
	}
	if !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestProcess_CancelledContext tests process with cancelled context
func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	tmpDir := t.TempDir()
	if err := process(cancelCtx, tmpDir, tmpDir, renderTo(tmpDir, env.Log), env.Log); err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestProcess_NotRecognized(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("hello"))
	if err := process(ctx, src, "", renderTo(t.TempDir(), env.Log), env.Log); err == nil {
		t.Error("expected error for unrecognized file")
	}
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtDocument

	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, filepath.Join(srcDir, "welcome.yaml"), []byte(welcomeYAML))
	writeFile(t, filepath.Join(srcDir, "logo.png"), makePNG(t, 40, 20))

	if err := process(ctx, src, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	// default template uses template name
	out := filepath.Join(dstDir, "welcome.html")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output was not written: %v", err)
	}
	if !strings.Contains(string(data), "<!DOCTYPE html>") {
		t.Error("document expected")
	}
	if !exists(t, filepath.Join(dstDir, "images", "logo.png")) {
		t.Error("image was not written next to output")
	}

	// second run must not silently replace result
	if err := process(ctx, src, dstDir, renderTo(dstDir, env.Log), env.Log); err == nil {
		t.Error("expected error for existing output")
	}
	env.Overwrite = true
	if err := process(ctx, src, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}

func TestProcess_OutputOverSource(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format, env.Overwrite = common.OutputFmtFragment, true

	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "page.html"), []byte("<p>hi</p>"))
	if err := process(ctx, src, dir, renderTo(dir, env.Log), env.Log); err == nil {
		t.Fatal("expected error when output replaces source")
	}
	if data, _ := os.ReadFile(src); string(data) != "<p>hi</p>" {
		t.Errorf("source was modified: %q", data)
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtFragment
	env.Cfg.Document.OutputNameTemplate = ""

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.json"), []byte(`{"blocks": [{"id": "1", "type": "text", "content": "A"}]}`))
	writeFile(t, filepath.Join(srcDir, "sub", "b.yml"), []byte("blocks:\n  - id: \"1\"\n    type: text\n    content: B\n"))
	writeFile(t, filepath.Join(srcDir, "sub", "c.html"), []byte("<p>C</p>"))
	writeFile(t, filepath.Join(srcDir, "readme.txt"), []byte("skip me"))
	writeFile(t, filepath.Join(srcDir, "broken.json"), []byte("{"))

	if err := process(ctx, srcDir, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	tests := []struct {
		name string
		want string
	}{
		{"a.html", "<p>A</p>"},
		{filepath.Join("sub", "b.html"), "<p>B</p>"},
		{filepath.Join("sub", "c.html"), "C</p>"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dstDir, tt.name))
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !strings.Contains(string(data), tt.want) {
			t.Errorf("%s = %q, want %q", tt.name, data, tt.want)
		}
	}
	if exists(t, filepath.Join(dstDir, "readme.html")) || exists(t, filepath.Join(dstDir, "broken.html")) {
		t.Error("unexpected output")
	}
}

func TestProcess_NoDirs(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format, env.NoDirs = common.OutputFmtFragment, true
	env.Cfg.Document.OutputNameTemplate = ""

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "deep", "er", "x.json"), []byte(`{"blocks": [{"id": "1", "type": "text", "content": "X"}]}`))
	if err := process(ctx, srcDir, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatal(err)
	}
	if !exists(t, filepath.Join(dstDir, "x.html")) {
		t.Error("output should be flattened")
	}
}

func TestProcess_DestinationInsideSource(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtDocument
	env.Cfg.Document.OutputNameTemplate = ""

	srcDir := t.TempDir()
	dstDir := filepath.Join(srcDir, "out")
	writeFile(t, filepath.Join(srcDir, "a.json"), []byte(`{"blocks": [{"id": "1", "type": "text", "content": "A"}]}`))
	// left from the previous run, must not be treated as source
	writeFile(t, filepath.Join(dstDir, "old.html"), []byte("<p>old</p>"))

	if err := process(ctx, srcDir, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatal(err)
	}
	if !exists(t, filepath.Join(dstDir, "a.html")) {
		t.Error("output missing")
	}
	if exists(t, filepath.Join(dstDir, "out", "old.html")) {
		t.Error("previous output was rendered again")
	}
}

func TestProcess_Glob(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtFragment
	env.Cfg.Document.OutputNameTemplate = ""

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "one.json"), []byte(`{"blocks": [{"id": "1", "type": "text", "content": "1"}]}`))
	writeFile(t, filepath.Join(srcDir, "nested", "two.json"), []byte(`{"blocks": [{"id": "1", "type": "text", "content": "2"}]}`))
	writeFile(t, filepath.Join(srcDir, "three.yaml"), []byte("blocks:\n  - id: \"1\"\n    type: text\n    content: \"3\"\n"))

	pattern := filepath.Join(srcDir, "**", "*.json")
	if err := process(ctx, pattern, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if !exists(t, filepath.Join(dstDir, "one.html")) || !exists(t, filepath.Join(dstDir, "nested", "two.html")) {
		t.Error("matched sources were not rendered")
	}
	if exists(t, filepath.Join(dstDir, "three.html")) {
		t.Error("source not matching pattern was rendered")
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtDocument

	srcDir, dstDir := t.TempDir(), t.TempDir()
	zipPath := writeZip(t, filepath.Join(srcDir, "campaign.zip"), map[string][]byte{
		"mails/welcome.yaml":   []byte(welcomeYAML),
		"mails/logo.png":       makePNG(t, 30, 30),
		"mails/other.json":     []byte(`{"name": "Other", "blocks": [{"id": "1", "type": "text", "content": "O"}]}`),
		"mails/notes/todo.txt": []byte("skip"),
	})

	t.Run("path inside archive", func(t *testing.T) {
		src := filepath.Join(zipPath, "mails", "welcome.yaml")
		if err := process(ctx, src, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if !exists(t, filepath.Join(dstDir, "mails", "welcome.html")) {
			t.Error("output missing")
		}
		if !exists(t, filepath.Join(dstDir, "mails", "images", "logo.png")) {
			t.Error("image from archive missing")
		}
		if exists(t, filepath.Join(dstDir, "mails", "other.html")) {
			t.Error("only requested path should be rendered")
		}
	})

	t.Run("whole archive in directory", func(t *testing.T) {
		out := t.TempDir()
		if err := process(ctx, srcDir, out, renderTo(out, env.Log), env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		for _, name := range []string{"welcome.html", "other.html"} {
			if !exists(t, filepath.Join(out, "mails", name)) {
				t.Errorf("%s missing", name)
			}
		}
	})
}

func TestProcess_Bundle(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.OutputFmtBundle

	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeFile(t, filepath.Join(srcDir, "welcome.yaml"), []byte(welcomeYAML))
	writeFile(t, filepath.Join(srcDir, "logo.png"), makePNG(t, 700, 70))

	if err := process(ctx, src, dstDir, renderTo(dstDir, env.Log), env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	files, err := archive.ReadAll(filepath.Join(dstDir, "welcome.zip"))
	if err != nil {
		t.Fatalf("bundle is not readable: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("bundle has %d entries, want 2", len(files))
	}
	if !strings.Contains(string(files["index.html"]), `src="images/logo.png"`) {
		t.Error("index.html does not reference bundled image")
	}
	if _, ok := files["images/logo.png"]; !ok {
		t.Error("image missing in bundle")
	}
	if exists(t, filepath.Join(dstDir, "images")) {
		t.Error("images should only be stored inside bundle")
	}
}

func TestWriteImage(t *testing.T) {
	name := filepath.Join(t.TempDir(), "images", "a.png")
	if err := writeImage(name, []byte("one"), false); err != nil {
		t.Fatal(err)
	}
	if err := writeImage(name, []byte("one"), false); err != nil {
		t.Errorf("identical image should be accepted: %v", err)
	}
	if err := writeImage(name, []byte("two"), false); err == nil {
		t.Error("expected conflict error")
	}
	if err := writeImage(name, []byte("two"), true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}
