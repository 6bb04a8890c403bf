package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HideAuthorBioTriState(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *bool
	}{
		{name: "absent", src: "---\ntitle: Post A\ndate: 2025-11-14\n---\nbody\n", want: nil},
		{name: "true", src: "---\ntitle: Post B\ndate: 2025-11-14\nhide_author_bio: true\n---\nbody\n", want: boolPtr(true)},
		{name: "false", src: "---\ntitle: Post C\nhide_author_bio: false\n---\nbody\n", want: boolPtr(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			require.Empty(t, page.Issues)
			require.Equal(t, tt.want, page.FrontMatter.HideAuthorBio)
		})
	}
}

func TestParse_TypedFields(t *testing.T) {
	page, err := Parse([]byte("---\ntitle: Post A\ndate: 2025-11-14\ndraft: true\ntags: [go]\n---\n# Hello\n"))
	require.NoError(t, err)

	fm := page.FrontMatter
	assert.Equal(t, "Post A", fm.Title)
	assert.Equal(t, time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), fm.Date)
	assert.True(t, fm.Draft)
	assert.Equal(t, []any{"go"}, fm.Fields["tags"])
	assert.Equal(t, "# Hello\n", string(page.Body))
	assert.NoError(t, fm.Validate())
}

func TestParse_DateFormats(t *testing.T) {
	for _, raw := range []string{
		"2025-11-14T09:30:00Z",
		"\"2025-11-14T09:30:00\"",
		"\"2025-11-14 09:30:00\"",
	} {
		page, err := Parse([]byte("---\ntitle: x\ndate: " + raw + "\n---\n"))
		require.NoError(t, err, raw)
		require.Empty(t, page.Issues, raw)
		require.Equal(t, 2025, page.FrontMatter.Date.Year(), raw)
		require.Equal(t, 9, page.FrontMatter.Date.Hour(), raw)
	}
}

func TestParse_NonBooleanHideFlagIsAnIssue(t *testing.T) {
	page, err := Parse([]byte("---\ntitle: Post D\ndate: 2025-11-14\nhide_author_bio: \"yes\"\n---\n"))
	require.NoError(t, err)
	require.Nil(t, page.FrontMatter.HideAuthorBio)
	require.Len(t, page.Issues, 1)
	require.Equal(t, FieldHideAuthorBio, page.Issues[0].Field)
}

func TestParse_BadDateIsAnIssue(t *testing.T) {
	page, err := Parse([]byte("---\ntitle: Post E\ndate: next tuesday\n---\n"))
	require.NoError(t, err)
	require.True(t, page.FrontMatter.Date.IsZero())
	require.Len(t, page.Issues, 1)
	require.Equal(t, FieldDate, page.Issues[0].Field)
}

func TestParse_NoFrontMatter(t *testing.T) {
	page, err := Parse([]byte("just a body\n"))
	require.NoError(t, err)
	require.Equal(t, "just a body\n", string(page.Body))
	require.Nil(t, page.FrontMatter.HideAuthorBio)

	verr := page.FrontMatter.Validate()
	require.Error(t, verr)
	require.True(t, errors.Is(verr, ErrMissingTitle))
	require.True(t, errors.Is(verr, ErrMissingDate))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unterminated\n---\n"))
	require.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
