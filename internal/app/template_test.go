package app

import (
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/simp-lee/flyingpig/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/layouts/base.html": &fstest.MapFile{
			Data: []byte(
				`{{ define "base" }}<html><head><title>{{ block "title" . }}Default{{ end }}</title></head>` +
					`<body>{{ block "content" . }}{{ end }}</body></html>{{ end }}`),
		},
		"templates/docs/page.html": &fstest.MapFile{
			Data: []byte(
				`{{ template "base" . }}` +
					`{{ define "title" }}Docs{{ end }}` +
					`{{ define "content" }}<script>init({{ json .URL }})</script>{{ end }}`),
		},
		"templates/other.html": &fstest.MapFile{
			Data: []byte(`{{ template "base" . }}`),
		},
	}
}

func renderPage(t *testing.T, r *TemplateRenderer, name string, data any) (string, error) {
	t.Helper()
	w := httptest.NewRecorder()
	err := r.Instance(name, data).Render(w)
	if ct := w.Header().Get("Content-Type"); ct != htmlContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	return w.Body.String(), err
}

func TestTemplateRenderer_Release(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	if len(r.templates) != 2 {
		t.Fatalf("pages = %d, want 2", len(r.templates))
	}

	out, err := renderPage(t, r, "docs/page.html", map[string]string{"URL": "/docs/json/"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<title>Docs</title>") {
		t.Errorf("block not overridden: %s", out)
	}
	if !strings.Contains(out, `init("/docs/json/")`) {
		t.Errorf("json helper output missing: %s", out)
	}

	out, err = renderPage(t, r, "other.html", nil)
	if err != nil || !strings.Contains(out, "<title>Default</title>") {
		t.Errorf("default block: %q, %v", out, err)
	}
}

func TestTemplateRenderer_MissingPage(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	if _, err := renderPage(t, r, "nope.html", nil); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestTemplateRenderer_DebugReloads(t *testing.T) {
	fsys := testFS()
	r, err := NewTemplateRenderer(fsys, true)
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	if r.templates != nil {
		t.Error("debug mode must not cache templates")
	}

	fsys["templates/other.html"] = &fstest.MapFile{Data: []byte(`changed`)}
	out, err := renderPage(t, r, "other.html", nil)
	if err != nil || out != "changed" {
		t.Errorf("render = %q, %v", out, err)
	}

	fsys["templates/other.html"] = &fstest.MapFile{Data: []byte(`{{ broken`)}
	if _, err := renderPage(t, r, "other.html", nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestTemplateRenderer_ParseError(t *testing.T) {
	fsys := testFS()
	fsys["templates/bad.html"] = &fstest.MapFile{Data: []byte(`{{ if }}`)}
	if _, err := NewTemplateRenderer(fsys, false); err == nil {
		t.Error("expected parse error")
	}
}

func TestTemplateRenderer_EmbeddedRedoc(t *testing.T) {
	r, err := NewTemplateRenderer(web.EmbeddedFS, false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	out, err := renderPage(t, r, "docs/redoc.html", map[string]string{"Title": "Flying Pig API", "SchemaURL": "/docs/json/"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<title>Flying Pig API - ReDoc</title>", `Redoc.init("/docs/json/"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
