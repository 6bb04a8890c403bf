package site

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/blogbuilder/internal/fingerprint"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// Kind distinguishes regular pages from the branch files that carry a list
// page's title and introduction.
type Kind int

const (
	KindPage Kind = iota
	KindBranch
)

// Source is one Markdown file under the content directory.
type Source struct {
	Path    string // absolute path
	Rel     string // slash-separated, relative to the content directory
	Kind    Kind
	Section string // first path segment, "" for top-level files
	Dir     string // output directory, relative to the output root
}

// Output is the output file path relative to the output root.
func (s Source) Output() string { return path.Join(s.Dir, "index.html") }

// Discover returns every Markdown file under root, sorted by relative path.
func Discover(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var sources []Source
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sources = append(sources, newSource(p, filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Rel < sources[j].Rel })
	return sources, nil
}

func newSource(abs, rel string) Source {
	dir, file := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	name := strings.TrimSuffix(file, path.Ext(file))

	s := Source{Path: abs, Rel: rel}
	if first, _, ok := strings.Cut(rel, "/"); ok {
		s.Section = first
	}

	switch name {
	case "_index":
		s.Kind = KindBranch
		s.Dir = dir
	case "index":
		// page bundle: the directory is the page
		s.Dir = dir
	default:
		s.Dir = path.Join(dir, name)
	}
	return s
}

// Loaded is a parsed source.
type Loaded struct {
	Source
	Page        frontmatter.Page
	Fingerprint string
	Problems    []error
}

// Title returns the front matter title, falling back to one derived from
// the file or directory name.
func (l Loaded) Title() string {
	if l.Page.FrontMatter.Title != "" {
		return l.Page.FrontMatter.Title
	}
	if l.Dir == "" {
		return ""
	}
	return titleFromName(path.Base(l.Dir))
}

var titleCaser = cases.Title(language.English)

func titleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// Load reads and parses a source. Structural front matter errors are returned;
// field issues and validation failures are collected in Problems.
func Load(src Source) (Loaded, error) {
	content, err := os.ReadFile(src.Path)
	if err != nil {
		return Loaded{}, err
	}
	page, err := frontmatter.Parse(content)
	if err != nil {
		return Loaded{}, err
	}

	l := Loaded{Source: src, Page: page}
	for _, issue := range page.Issues {
		l.Problems = append(l.Problems, issue)
	}
	if src.Kind == KindPage {
		if verr := page.FrontMatter.Validate(); verr != nil {
			l.Problems = append(l.Problems, unjoin(verr)...)
		}
	}

	l.Fingerprint, err = fingerprint.Page(page.FrontMatter.Fields, page.Body)
	if err != nil {
		return Loaded{}, fmt.Errorf("fingerprint: %w", err)
	}
	return l, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// permalink joins the base URL and an output directory into a directory URL.
func permalink(baseURL, dir string) string {
	if dir == "" || dir == "." {
		return ensureSlash(baseURL)
	}
	u, err := url.JoinPath(baseURL, strings.Split(dir, "/")...)
	if err != nil {
		return ensureSlash(baseURL) + dir + "/"
	}
	return ensureSlash(u)
}

func ensureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
