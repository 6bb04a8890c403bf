package layout

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
)

var shownBio = authorbio.Decision{
	ShowAuthorBio:     true,
	AuthorName:        "Gaurav Padam",
	AuthorDescription: "Backend engineer.",
	AuthorLinkedIn:    "https://linkedin.com/in/x",
}

func pageData(bio authorbio.Decision, auto bool) PageData {
	return PageData{
		Site:    Site{Title: "Notes", BaseURL: "https://example.com/"},
		Title:   "Post A",
		Date:    time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC),
		Content: "<p>Hello</p>",
		Bio:     bio,
		AutoBio: auto,
	}
}

func TestRenderPage_AutoBio(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.RenderPage(&buf, pageData(shownBio, true)))
	out := buf.String()

	require.Contains(t, out, "<title>Post A | Notes</title>")
	require.Contains(t, out, "<p>Hello</p>")
	require.Contains(t, out, `<aside class="author-bio">`)
	require.Contains(t, out, "Gaurav Padam")
	require.Contains(t, out, `href="https://linkedin.com/in/x"`)
	require.Contains(t, out, `datetime="2025-11-14"`)
}

func TestRenderPage_BioOmitted(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	hidden := shownBio
	hidden.ShowAuthorBio = false

	for name, data := range map[string]PageData{
		"hidden by page":    pageData(hidden, true),
		"auto bio disabled": pageData(shownBio, false),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, e.RenderPage(&buf, data))
			require.NotContains(t, buf.String(), "author-bio")
		})
	}
}

func TestRenderPage_MissingLinkedInOmitsLink(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	bio := shownBio
	bio.AuthorLinkedIn = ""

	var buf bytes.Buffer
	require.NoError(t, e.RenderPage(&buf, pageData(bio, true)))
	require.Contains(t, buf.String(), `<aside class="author-bio">`)
	require.NotContains(t, buf.String(), "author-bio__linkedin")
}

func TestRenderBio(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	html, err := e.RenderBio(shownBio)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(html), `<aside class="author-bio">`))

	hidden := shownBio
	hidden.ShowAuthorBio = false
	html, err = e.RenderBio(hidden)
	require.NoError(t, err)
	require.Empty(t, html)
}

func TestRenderBio_EscapesParams(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	bio := shownBio
	bio.AuthorName = "<b>Gaurav</b>"
	bio.AuthorLinkedIn = "javascript:alert(1)"

	html, err := e.RenderBio(bio)
	require.NoError(t, err)
	require.Contains(t, string(html), "&lt;b&gt;Gaurav&lt;/b&gt;")
	require.NotContains(t, string(html), "javascript:")
}

func TestRenderList(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.RenderList(&buf, ListData{
		Site:  Site{Title: "Notes"},
		Title: "Posts",
		Pages: []ListEntry{
			{Title: "Post B", Permalink: "/posts/post-b/", Date: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)},
			{Title: "Post A", Permalink: "/posts/post-a/"},
		},
	}))
	out := buf.String()
	require.Contains(t, out, `<a href="/posts/post-b/">Post B</a>`)
	require.Contains(t, out, `<a href="/posts/post-a/">Post A</a>`)
	require.Less(t, strings.Index(out, "Post B"), strings.Index(out, "Post A"))
	require.NotContains(t, out, "author-bio")
}

func TestLoad_OverridePartial(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "author-bio.html"),
		[]byte(`{{ define "author-bio" }}<div class="author-bio custom">by {{ .AuthorName }}</div>{{ end }}`), 0o600))

	e, err := Load(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.RenderPage(&buf, pageData(shownBio, true)))
	require.Contains(t, buf.String(), `<div class="author-bio custom">by Gaurav Padam</div>`)
}

func TestLoad_BrokenOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_default"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_default", "single.html"), []byte(`{{ define "main" }}{{ .Title `), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "_default/single.html")
}

func TestEngine_ConcurrentRender(t *testing.T) {
	e, err := Load("")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			require.NoError(t, e.RenderPage(&buf, pageData(shownBio, true)))
			_, err := e.RenderBio(shownBio)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestEngine_DigestTracksOverrides(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)
	again, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, base.Digest(), again.Digest())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "author-bio.html"),
		[]byte(`{{ define "author-bio" }}<p>{{ .AuthorName }}</p>{{ end }}`), 0o600))
	custom, err := Load(dir)
	require.NoError(t, err)
	require.NotEqual(t, base.Digest(), custom.Digest())
}
