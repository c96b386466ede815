package util

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"
)

const layout = "layout.html"

// Renderer holds one parsed template set per page, each combined with the
// shared layout. Pages execute the "base" template.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
	"add":  func(a, b int) int { return a + b },
}

// NewRenderer parses every *.html page under dir in fsys.
func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == layout {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(fsys, path.Join(dir, layout), name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[base] = t
	}
	return r, nil
}

// Render writes page with the given status. The page is buffered so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
