package markdown

import (
	"bytes"
	"regexp"
)

// BioShortcode is the shortcode name that marks a manual bio position.
const BioShortcode = "author-bio"

// bioPlaceholder survives Markdown rendering and sanitising unchanged.
const bioPlaceholder = "BLOGBUILDERAUTHORBIOMARKER"

var (
	fencedBlock = regexp.MustCompile("(?s)(```.*?```|~~~.*?~~~)")

	bioCall    = regexp.MustCompile(`\{\{([<%])\s*` + regexp.QuoteMeta(BioShortcode) + `\s*/?\s*([>%])\}\}`)
	bioEscaped = regexp.MustCompile(`\{\{([<%])/\*\s*(` + regexp.QuoteMeta(BioShortcode) + `)\s*\*/([>%])\}\}`)
)

// MarkBioShortcodes replaces author-bio shortcode calls outside fenced code
// blocks with a placeholder and returns the rewritten body and the number of
// calls found. Escaped calls ({{</* author-bio */>}}) are turned into their
// literal form.
func MarkBioShortcodes(body []byte) ([]byte, int) {
	count := 0
	out := make([]byte, 0, len(body))

	last := 0
	for _, loc := range fencedBlock.FindAllIndex(body, -1) {
		out = append(out, markSegment(body[last:loc[0]], &count)...)
		out = append(out, unescape(body[loc[0]:loc[1]])...)
		last = loc[1]
	}
	out = append(out, markSegment(body[last:], &count)...)
	return out, count
}

func markSegment(seg []byte, count *int) []byte {
	seg = bioCall.ReplaceAllFunc(seg, func(m []byte) []byte {
		sub := bioCall.FindSubmatch(m)
		if !pairedDelimiters(sub[1], sub[2]) {
			return m
		}
		*count++
		return []byte("\n\n" + bioPlaceholder + "\n\n")
	})
	return unescape(seg)
}

func unescape(seg []byte) []byte {
	return bioEscaped.ReplaceAll(seg, []byte("{{${1} ${2} ${3}}}"))
}

func pairedDelimiters(open, closing []byte) bool {
	return (open[0] == '<' && closing[0] == '>') || (open[0] == '%' && closing[0] == '%')
}

// ReplaceBioPlaceholders substitutes every placeholder in rendered HTML with
// bio. A placeholder that Markdown wrapped in its own paragraph is replaced
// together with the paragraph tags.
func ReplaceBioPlaceholders(html, bio []byte) []byte {
	html = bytes.ReplaceAll(html, []byte("<p>"+bioPlaceholder+"</p>"), bio)
	return bytes.ReplaceAll(html, []byte(bioPlaceholder), bio)
}
