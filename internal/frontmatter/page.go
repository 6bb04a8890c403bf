package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Field names with build semantics.
const (
	FieldTitle         = "title"
	FieldDate          = "date"
	FieldDraft         = "draft"
	FieldHideAuthorBio = "hide_author_bio"
)

var (
	ErrMissingTitle = errors.New("front matter is missing a title")
	ErrMissingDate  = errors.New("front matter is missing a date")
)

// dateLayouts are tried in order for string dates. YAML timestamps that
// already decoded to time.Time skip this.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FrontMatter is the typed view of a page's metadata block.
type FrontMatter struct {
	Title string
	Date  time.Time
	Draft bool

	// HideAuthorBio is nil when the page does not set hide_author_bio.
	HideAuthorBio *bool

	// Fields holds every decoded key, including the typed ones above.
	Fields map[string]any
}

// FieldIssue describes a front matter value that was present but unusable.
// The field is treated as absent.
type FieldIssue struct {
	Field string
	Value any
	Err   error
}

func (i FieldIssue) Error() string {
	return fmt.Sprintf("front matter field %q (%v): %v", i.Field, i.Value, i.Err)
}

func (i FieldIssue) Unwrap() error { return i.Err }

// Page is a parsed content file.
type Page struct {
	FrontMatter FrontMatter
	Body        []byte
	Issues      []FieldIssue
}

// Parse splits content and decodes its front matter. Structural problems
// (unterminated block, invalid YAML) are returned as errors; unusable
// individual values are collected in Page.Issues.
func Parse(content []byte) (Page, error) {
	doc, err := Split(content)
	if err != nil {
		return Page{}, err
	}
	fields, err := ParseYAML(doc.Raw)
	if err != nil {
		return Page{}, fmt.Errorf("decode front matter: %w", err)
	}

	fm, issues := Decode(fields)
	return Page{FrontMatter: fm, Body: doc.Body, Issues: issues}, nil
}

// Decode maps a generic field map onto FrontMatter.
func Decode(fields map[string]any) (FrontMatter, []FieldIssue) {
	if fields == nil {
		fields = map[string]any{}
	}
	fm := FrontMatter{Fields: fields}
	var issues []FieldIssue

	if v, ok := fields[FieldTitle]; ok && v != nil {
		fm.Title = strings.TrimSpace(fmt.Sprint(v))
	}

	if v, ok := fields[FieldDate]; ok && v != nil {
		d, err := toTime(v)
		if err != nil {
			issues = append(issues, FieldIssue{Field: FieldDate, Value: v, Err: err})
		} else {
			fm.Date = d
		}
	}

	if v, ok := fields[FieldDraft]; ok && v != nil {
		if b, isBool := v.(bool); isBool {
			fm.Draft = b
		} else {
			issues = append(issues, FieldIssue{Field: FieldDraft, Value: v, Err: errNotBool})
		}
	}

	if v, ok := fields[FieldHideAuthorBio]; ok && v != nil {
		if b, isBool := v.(bool); isBool {
			fm.HideAuthorBio = &b
		} else {
			issues = append(issues, FieldIssue{Field: FieldHideAuthorBio, Value: v, Err: errNotBool})
		}
	}

	return fm, issues
}

// Validate reports required fields that are missing.
func (fm FrontMatter) Validate() error {
	var errs []error
	if fm.Title == "" {
		errs = append(errs, ErrMissingTitle)
	}
	if fm.Date.IsZero() {
		errs = append(errs, ErrMissingDate)
	}
	return errors.Join(errs...)
}

var errNotBool = errors.New("expected a boolean")

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date format %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
