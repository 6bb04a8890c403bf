// Package fingerprint computes content fingerprints for pages and keeps the
// manifest used to skip unchanged pages in incremental builds.
package fingerprint

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// volatile fields do not affect rendered output.
var volatile = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastmod":             {},
	"uid":                 {},
	"aliases":             {},
}

// Page returns the canonical fingerprint of a page. Front matter is
// serialised with sorted keys and LF newlines so map order and line endings
// do not change the result.
func Page(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := volatile[k]; skip {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		raw, err := frontmatter.SerializeYAML(hashed, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(raw), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

// Combine fingerprints an ordered list of parts, e.g. the inputs shared by
// every page of a build.
func Combine(parts ...string) string {
	return mdfp.CalculateFingerprintFromParts(strings.Join(parts, "\x00"), "")
}
