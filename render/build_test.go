package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mailbuilder/assets"
	"mailbuilder/config"
	"mailbuilder/state"
)

const welcomeYAML = `name: Welcome
subject: Hello {{ name }}
blocks:
  - id: h1
    type: heading
    content: {text: Welcome aboard, level: 1}
  - id: t1
    type: text
    content: "Hi {{ name }}. Thanks for joining us. We are glad you are here."
  - id: logo
    type: image
    content: {src: logo.png, alt: Logo}
  - id: broken
    type: button
    content: {text: Go}
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestBuild_Template(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Data = map[string]any{"name": "Ann"}

	src := &Source{
		Name: "welcome.yaml",
		Data: []byte(welcomeYAML),
		Load: assets.MapLoader(map[string][]byte{"logo.png": makePNG(t, 900, 300)}),
	}
	res, err := Build(src, env, env.Log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if res.Name != "Welcome" || res.Subject != "Hello {{ name }}" {
		t.Errorf("Name, Subject = %q, %q", res.Name, res.Subject)
	}
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
	if !strings.Contains(res.Fragment, "<p>Hi Ann. Thanks for joining us.") {
		t.Errorf("merge tags were not expanded: %s", res.Fragment)
	}
	if strings.Contains(res.Fragment, "<a ") {
		t.Error("invalid button was rendered")
	}
	if !strings.Contains(res.Fragment, `src="images/logo.png"`) || !strings.Contains(res.Fragment, `width="600" height="200"`) {
		t.Errorf("image was not prepared: %s", res.Fragment)
	}
	if len(res.Images) != 1 || res.Images[0].Width != 600 {
		t.Fatalf("Images = %+v", res.Images)
	}
	if !strings.HasPrefix(res.Preheader, "Hi Ann. Thanks for joining us.") {
		t.Errorf("Preheader = %q", res.Preheader)
	}
	if !strings.HasPrefix(res.Document, "<!DOCTYPE html>") || !strings.Contains(res.Document, "<title>Hello {{ name }}</title>") {
		t.Errorf("Document head is wrong: %.300s", res.Document)
	}
	if !strings.Contains(res.Document, "font-family: Arial") {
		t.Errorf("email styles are missing: %.600s", res.Document)
	}
}

func TestBuild_TemplateInlineImages(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Document.Images.Inline = true

	res, err := Build(&Source{
		Name: "welcome.yaml",
		Data: []byte(welcomeYAML),
		Load: assets.MapLoader(map[string][]byte{"logo.png": makePNG(t, 10, 10)}),
	}, env, env.Log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.Images) != 0 {
		t.Errorf("inlined images should not be written separately, got %d", len(res.Images))
	}
	if !strings.Contains(res.Fragment, `src="data:image/png;base64,`) {
		t.Errorf("image was not inlined: %.300s", res.Fragment)
	}
}

func TestBuild_DeterministicClassName(t *testing.T) {
	_, env := setupTestEnv(t)
	src := &Source{Name: "a.json", Data: []byte(`{"name": "A", "blocks": [{"id": "1", "type": "text", "content": "x"}]}`)}

	first, err := Build(src, env, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(src, env, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	if first.Document != second.Document {
		t.Error("repeated renders differ")
	}
}

func TestBuild_HTML(t *testing.T) {
	_, env := setupTestEnv(t)
	src := &Source{
		Name: "news/letter.html",
		Data: []byte(`<h1>News</h1><p style="color: #ff0000">First sentence. Second one.</p>`),
	}
	res, err := Build(src, env, env.Log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if res.Name != "letter" {
		t.Errorf("Name = %q", res.Name)
	}
	if !strings.Contains(res.Fragment, "News") || !strings.Contains(res.Fragment, "#ff0000") {
		t.Errorf("Fragment = %s", res.Fragment)
	}
	if !strings.HasPrefix(res.Preheader, "News") {
		t.Errorf("Preheader = %q", res.Preheader)
	}
	if !strings.Contains(res.Document, "<title>letter</title>") {
		t.Errorf("Document title is wrong: %.300s", res.Document)
	}
}

func TestBuild_HTMLCharset(t *testing.T) {
	_, env := setupTestEnv(t)
	if err := env.SetCharset("windows-1251"); err != nil {
		t.Fatal(err)
	}
	// "Привет" in windows-1251
	data := append([]byte("<p>"), 0xcf, 0xf0, 0xe8, 0xe2, 0xe5, 0xf2)
	data = append(data, []byte("</p>")...)
	res, err := Build(&Source{Name: "ru.html", Data: data}, env, env.Log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(res.Fragment, "Привет") {
		t.Errorf("Fragment = %s", res.Fragment)
	}
}

func TestBuild_Errors(t *testing.T) {
	_, env := setupTestEnv(t)
	tests := []struct {
		name string
		src  *Source
	}{
		{"unsupported", &Source{Name: "a.txt", Data: []byte("x")}},
		{"bad json", &Source{Name: "a.json", Data: []byte("{")}},
		{"nothing valid", &Source{Name: "a.yaml", Data: []byte("blocks:\n  - type: text\n    content: \"\"\n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.src, env, env.Log); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuild_DebugTree(t *testing.T) {
	_, env := setupTestEnv(t)
	rpt, err := (&config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rpt.Close() })
	env.Rpt = rpt

	res, err := Build(&Source{Name: "welcome.yaml", Data: []byte(welcomeYAML)}, env, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"template\n", `  name: "Welcome"`, "blocks: 3 of 4 valid", "0 id=h1 type=heading", "src: \"logo.png\""} {
		if !strings.Contains(res.Tree, want) {
			t.Errorf("template tree does not contain %q:\n%s", want, res.Tree)
		}
	}

	res, err = Build(&Source{Name: "a.html", Data: []byte(`<p>Hi</p>`)}, env, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"document\n", "  <p ", `#text: "Hi"`, "styles\n", "email\n"} {
		if !strings.Contains(res.Tree, want) {
			t.Errorf("session tree does not contain %q:\n%s", want, res.Tree)
		}
	}

	src := &Source{Name: "a.html"}
	storeTree(env, src, res.Tree)
	storeTree(env, src, res.Tree)
	if !rpt.Has("tree/a.html.txt") {
		t.Error("tree was not stored")
	}
}
