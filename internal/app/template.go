package app

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/render"
)

// TemplateRenderer is the engine's HTML renderer. Pages under templates/
// are parsed on top of the shared layouts in templates/layouts/, so a page
// calls {{ template "base" . }} and overrides the layout's blocks.
//
// In debug mode templates are re-read on every render so edits show up
// without a restart. Otherwise they are parsed once.
type TemplateRenderer struct {
	templates map[string]*template.Template // page name -> compiled set, release only
	fs        fs.FS
	debug     bool
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a TemplateRenderer reading templates/ from fsys.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fs: fsys, debug: debug}
	if !debug {
		templates, err := r.parse()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		r.templates = templates
	}
	return r, nil
}

// Instance returns the render for page name, a path relative to
// templates/ such as "docs/redoc.html".
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	templates := r.templates
	if r.debug {
		var err error
		if templates, err = r.parse(); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: templates[name], Name: name, Data: data}
}

func (r *TemplateRenderer) parse() (map[string]*template.Template, error) {
	layouts, err := fs.Glob(r.fs, "templates/layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob layouts: %w", err)
	}
	base := template.New("").Funcs(templateFuncMap())
	for _, f := range layouts {
		content, err := fs.ReadFile(r.fs, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := base.New(f).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
	}

	templates := make(map[string]*template.Template)
	err = fs.WalkDir(r.fs, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, "templates/")
		if d.IsDir() || !strings.HasSuffix(path, ".html") || strings.HasPrefix(name, "layouts/") {
			return nil
		}
		page, err := base.Clone()
		if err != nil {
			return fmt.Errorf("clone base for %s: %w", path, err)
		}
		content, err := fs.ReadFile(r.fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := page.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		templates[name] = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// json renders v as a JavaScript literal.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},
	}
}

// HTMLInstance renders one page. It implements render.Render.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

const htmlContentType = "text/html; charset=utf-8"

// Render writes the page to w.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets text/html unless a content type is already set.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if len(header["Content-Type"]) == 0 {
		header["Content-Type"] = []string{htmlContentType}
	}
}
