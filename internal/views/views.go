// Package views holds the embedded HTML templates and their cache.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed templates
var files embed.FS

// FS returns the template tree rooted at templates/
func FS() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

// NewTemplateCache creates an empty cache with the default helpers
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"longDate": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Format("Monday, 02 January 2006")
			},
			"shortDate": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Format("02 Jan 2006")
			},
			"contains": func(list []uint, id uint) bool {
				for _, v := range list {
					if v == id {
						return true
					}
				}
				return false
			},
			"join": strings.Join,
		},
	}
}

// AddFunc registers a template helper; call before Load
func (tc *TemplateCache) AddFunc(name string, fn any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses every page in pages/ together with all layouts and partials
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	pages, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return err
	}
	shared := []string{"layouts/*.html", "partials/*.html"}

	for _, page := range pages {
		name := path.Base(page)
		patterns := append([]string{page}, shared...)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, patterns...)
		if err != nil {
			log.Error().Err(err).Str("file", page).Msg("Failed to parse template")
			return fmt.Errorf("failed to parse %s: %w", page, err)
		}
		tc.cache[name] = tmpl
		log.Debug().Str("name", name).Msg("Cached template")
	}
	return nil
}

// Get returns the named page, or nil
func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes a page into w. Nothing is written when execution fails.
func (tc *TemplateCache) Render(w io.Writer, name string, data any) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
