// Package layout composes rendered page bodies into full HTML documents using
// html/template layouts. Defaults are embedded; a site can override any of
// them by placing a file with the same relative path in its layouts directory.
package layout

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
	"git.home.luguber.info/inful/blogbuilder/internal/fingerprint"
)

//go:embed all:defaults
var defaults embed.FS

const (
	baseofFile  = "_default/baseof.html"
	singleFile  = "_default/single.html"
	listFile    = "_default/list.html"
	headPartial = "partials/head.html"
	bioPartial  = "partials/author-bio.html"
	bioTemplate = "author-bio"
)

// Site is the site-wide data available to every layout.
type Site struct {
	Title       string
	BaseURL     string
	Description string
}

// PageData is passed to the single page layout.
type PageData struct {
	Site      Site
	Title     string
	Date      time.Time
	Permalink string
	Content   template.HTML
	Params    map[string]any

	// Bio is the author bio decision for this page. AutoBio reports whether
	// the layout appends it at the end of the page.
	Bio     authorbio.Decision
	AutoBio bool
}

// ListEntry is one item of a list page.
type ListEntry struct {
	Title     string
	Date      time.Time
	Permalink string
}

// ListData is passed to the list layout.
type ListData struct {
	Site      Site
	Title     string
	Permalink string
	Content   template.HTML
	Pages     []ListEntry
}

// Engine holds parsed layouts. It is safe for concurrent use once loaded.
type Engine struct {
	single *template.Template
	list   *template.Template
	digest string
}

// Load parses the layouts, preferring files under overrideDir when present.
// An empty or missing overrideDir uses the embedded defaults only.
func Load(overrideDir string) (*Engine, error) {
	var override fs.FS
	if overrideDir != "" {
		if info, err := os.Stat(overrideDir); err == nil && info.IsDir() {
			override = os.DirFS(overrideDir)
		}
	}
	embedded, err := fs.Sub(defaults, "defaults")
	if err != nil {
		return nil, err
	}
	src := layeredFS{override: override, base: embedded}

	shared, err := parse(template.New("layouts"), src, baseofFile, headPartial, bioPartial)
	if err != nil {
		return nil, err
	}

	single, err := cloneWith(shared, src, singleFile)
	if err != nil {
		return nil, err
	}
	list, err := cloneWith(shared, src, listFile)
	if err != nil {
		return nil, err
	}

	digest, err := sourceDigest(src)
	if err != nil {
		return nil, err
	}
	return &Engine{single: single, list: list, digest: digest}, nil
}

// Digest fingerprints the layout sources in use. It changes whenever an
// override is added, removed or edited.
func (e *Engine) Digest() string { return e.digest }

func sourceDigest(src layeredFS) (string, error) {
	names := []string{baseofFile, headPartial, bioPartial, singleFile, listFile}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := src.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("read layout %s: %w", name, err)
		}
		parts = append(parts, string(data))
	}
	return fingerprint.Combine(parts...), nil
}

func cloneWith(shared *template.Template, src layeredFS, name string) (*template.Template, error) {
	t, err := shared.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone layouts: %w", err)
	}
	return parse(t, src, name)
}

func parse(t *template.Template, src layeredFS, names ...string) (*template.Template, error) {
	for _, name := range names {
		data, err := src.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", name, err)
		}
		if _, err := t.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
	}
	return t, nil
}

// RenderPage writes a complete single page document.
func (e *Engine) RenderPage(w io.Writer, data PageData) error {
	return e.single.ExecuteTemplate(w, baseofFile, data)
}

// RenderList writes a complete list page document.
func (e *Engine) RenderList(w io.Writer, data ListData) error {
	return e.list.ExecuteTemplate(w, baseofFile, data)
}

// RenderBio renders the author-bio partial on its own, for manual placement.
// A decision that hides the bio renders nothing.
func (e *Engine) RenderBio(d authorbio.Decision) (template.HTML, error) {
	if !d.ShowAuthorBio {
		return "", nil
	}
	var buf bytes.Buffer
	if err := e.single.ExecuteTemplate(&buf, bioTemplate, d); err != nil {
		return "", err
	}
	return template.HTML(bytes.TrimSpace(buf.Bytes())), nil // #nosec G203 -- output of html/template
}

// layeredFS reads from override first and falls back to base.
type layeredFS struct {
	override fs.FS
	base     fs.FS
}

func (l layeredFS) ReadFile(name string) ([]byte, error) {
	if l.override != nil {
		data, err := fs.ReadFile(l.override, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return fs.ReadFile(l.base, name)
}
