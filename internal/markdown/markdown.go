// Package markdown renders page bodies to HTML and handles the author-bio
// shortcode that lets a page place its bio manually.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Options configure a Renderer.
type Options struct {
	// Sanitize runs rendered HTML through a user-generated-content policy.
	Sanitize bool
}

// Renderer converts Markdown bodies to HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer builds a goldmark renderer with GFM and automatic heading IDs.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		// keep heading anchors generated by the parser
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		r.policy = p
	}
	return r
}

// Render converts body to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	return out, nil
}
