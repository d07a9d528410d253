// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/web"
)

const baseTemplate = "layouts/base.html"

// Engine renders HTML templates. Every page is parsed into its own copy of
// the layouts and partials so pages can each define "content".
type Engine struct {
	pages  map[string]*template.Template
	format *Formatter
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *auth.Profile
	Nav         []NavItem
	// Error is a page-level failure message shown above the content.
	Error string
	Data  any
}

// Option customises the Engine.
type Option func(*Engine)

// WithLocale sets the locale used for numbers.
func WithLocale(locale string) Option {
	return func(e *Engine) {
		e.format = NewFormatter(locale)
	}
}

// NewEngine parses templates at start-up.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{pages: make(map[string]*template.Template), format: NewFormatter(DefaultLocale)}
	for _, opt := range opts {
		opt(e)
	}

	base, err := template.New("root").Funcs(e.format.FuncMap()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := fs.Glob(web.Templates, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, file := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		tpl, err := clone.ParseFS(web.Templates, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		e.pages["pages/"+path.Base(file)] = tpl
	}
	return e, nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.pages[name]
	return ok
}

// Render executes a page with status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a page into a buffer and writes it with status.
// Nothing is written when execution fails.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
