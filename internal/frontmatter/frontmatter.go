// Package frontmatter splits Markdown content files into their YAML front
// matter block and body, and decodes the front matter into the typed fields
// the build pipeline cares about.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Style records the newline convention of a source file.
type Style struct {
	Newline string
}

// Document is a content file split into raw front matter and body.
type Document struct {
	Raw   []byte // front matter without delimiters
	Body  []byte
	Had   bool // false when the file has no front matter block at all
	Style Style
}

// Split separates `---` delimited YAML front matter from the Markdown body.
//
// A document that does not start with the delimiter is returned with Had=false
// and the full input as Body.
func Split(content []byte) (Document, error) {
	style := detectStyle(content)
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return Document{Body: content, Style: style}, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return Document{Raw: []byte{}, Body: content[start+len(open):], Had: true, Style: style}, nil
	}

	closing := []byte(nl + delimiter + nl)
	idx := bytes.Index(content[start:], closing)
	if idx < 0 {
		// a closing delimiter on the last line without a trailing newline
		if bytes.HasSuffix(content, []byte(nl+delimiter)) {
			end := len(content) - len(delimiter)
			return Document{Raw: content[start:end], Body: []byte{}, Had: true, Style: style}, nil
		}
		return Document{Style: style}, ErrMissingClosingDelimiter
	}

	rawEnd := start + idx + len(nl)
	bodyStart := start + idx + len(closing)
	return Document{Raw: content[start:rawEnd], Body: content[bodyStart:], Had: true, Style: style}, nil
}

// ParseYAML decodes raw front matter into a generic field map. Empty input
// yields an empty, non-nil map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	return Style{Newline: nl}
}
