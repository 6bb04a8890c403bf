// Package authorbio decides, per page, whether the author bio block is
// rendered and with which author details.
//
// Decide is pure: it reads the page's front matter and the site parameters
// and returns a value. It is safe to call concurrently for every page of a
// build with a shared SiteParams.
package authorbio

import "git.home.luguber.info/inful/blogbuilder/internal/frontmatter"

// SiteParams are the site-wide author parameters, read from the `params`
// namespace of the site configuration once per build.
type SiteParams struct {
	AuthorsName        string `yaml:"authors_name"`
	AuthorsDescription string `yaml:"authors_description"`
	AuthorsLinkedIn    string `yaml:"authors_linkedin"`
}

// Decision is the outcome for a single page.
type Decision struct {
	ShowAuthorBio     bool   `yaml:"show_author_bio" json:"show_author_bio"`
	AuthorName        string `yaml:"author_name" json:"author_name"`
	AuthorDescription string `yaml:"author_description" json:"author_description"`
	AuthorLinkedIn    string `yaml:"author_linkedin" json:"author_linkedin"`
}

// Decide computes the author bio decision for a page. The bio is shown unless
// the page sets hide_author_bio: true; author fields always come from params.
func Decide(fm frontmatter.FrontMatter, params SiteParams) Decision {
	return Decision{
		ShowAuthorBio:     !hidden(fm.HideAuthorBio),
		AuthorName:        params.AuthorsName,
		AuthorDescription: params.AuthorsDescription,
		AuthorLinkedIn:    params.AuthorsLinkedIn,
	}
}

func hidden(flag *bool) bool {
	return flag != nil && *flag
}
