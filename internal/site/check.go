package site

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

// Problem is a content issue found by Check.
type Problem struct {
	Page     string                `yaml:"page"`
	Severity derrors.ErrorSeverity `yaml:"severity"`
	Message  string                `yaml:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Severity, p.Page, p.Message)
}

// Check parses every content file without writing output and reports front
// matter problems and author bio placements that will not behave as the
// page likely expects.
func Check(ctx context.Context, cfg *config.Config) ([]Problem, error) {
	sources, err := Discover(cfg.ContentPath())
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "content directory could not be read").
			WithContext("path", cfg.ContentPath())
	}
	params := cfg.SiteParams()
	auto := cfg.AutoAuthorBio()

	var problems []Problem
	add := func(page string, sev derrors.ErrorSeverity, msg string) {
		problems = append(problems, Problem{Page: page, Severity: sev, Message: msg})
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return problems, err
		}
		l, err := Load(src)
		if err != nil {
			add(src.Rel, derrors.SeverityError, err.Error())
			continue
		}
		for _, p := range l.Problems {
			add(src.Rel, problemSeverity(p), problemMessage(l, p))
		}

		_, markers := markdown.MarkBioShortcodes(l.Page.Body)
		if markers == 0 {
			continue
		}
		d := authorbio.Decide(l.Page.FrontMatter, params)
		switch {
		case !d.ShowAuthorBio:
			add(src.Rel, derrors.SeverityWarning, "author-bio shortcode renders nothing because hide_author_bio is true")
		case auto && src.Kind == KindPage:
			add(src.Rel, derrors.SeverityWarning, "author bio will render twice: author-bio shortcode used while author_bio.auto is enabled")
		case markers > 1:
			add(src.Rel, derrors.SeverityWarning, fmt.Sprintf("author-bio shortcode used %d times", markers))
		}
	}

	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Page < problems[j].Page })
	return problems, nil
}

// problemSeverity matches what build does with the problem: a missing title
// or date still renders the page, so it is only a warning.
func problemSeverity(p error) derrors.ErrorSeverity {
	if errors.Is(p, frontmatter.ErrMissingTitle) || errors.Is(p, frontmatter.ErrMissingDate) {
		return derrors.SeverityWarning
	}
	return derrors.SeverityError
}

// HasErrors reports whether any problem is more severe than a warning.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity != derrors.SeverityWarning {
			return true
		}
	}
	return false
}
