package site

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// BioClass is the class token identifying a rendered author bio block.
const BioClass = "author-bio"

// CountAuthorBios parses an HTML document and counts elements whose class
// list contains BioClass.
func CountAuthorBios(r io.Reader) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, err
	}
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, BioClass) {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return count, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}
