package site

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

func TestCheck(t *testing.T) {
	cfg := newSite(t, "", map[string]string{
		"ok.md":       post("OK", "2025-01-01", "", "fine\n"),
		"flag.md":     post("Flag", "2025-01-01", "hide_author_bio: 1\n", "x\n"),
		"broken.md":   "---\ntitle: x\n",
		"hidden.md":   post("Hidden", "2025-01-01", "hide_author_bio: true\n", "{{< author-bio >}}\n"),
		"twice.md":    post("Twice", "2025-01-01", "", "{{% author-bio %}}\n"),
		"no-title.md": "---\ndate: 2025-01-01\n---\n",
	})

	problems, err := Check(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, HasErrors(problems))

	byPage := map[string]Problem{}
	for _, p := range problems {
		byPage[p.Page] = p
	}
	require.Len(t, byPage, 5)
	assert.NotContains(t, byPage, "ok.md")

	assert.Equal(t, derrors.SeverityError, byPage["broken.md"].Severity)
	assert.Contains(t, byPage["flag.md"].Message, "hide_author_bio must be a boolean")
	assert.Equal(t, derrors.SeverityWarning, byPage["hidden.md"].Severity)
	assert.Contains(t, byPage["hidden.md"].Message, "renders nothing")
	assert.Contains(t, byPage["twice.md"].Message, "render twice")
	assert.Contains(t, byPage["no-title.md"].Message, `missing title, using "No Title"`)
	assert.Equal(t, derrors.SeverityWarning, byPage["no-title.md"].Severity)
	assert.Equal(t, derrors.SeverityError, byPage["flag.md"].Severity)
}

func TestCheck_MissingTitleAndDateAreWarnings(t *testing.T) {
	cfg := newSite(t, "", map[string]string{
		"untitled.md": "---\ndate: 2025-01-01\n---\nx\n",
		"undated.md":  "---\ntitle: Undated\n---\nx\n",
	})

	problems, err := Check(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	for _, p := range problems {
		assert.Equal(t, derrors.SeverityWarning, p.Severity, p.String())
	}
	assert.False(t, HasErrors(problems))
}

func TestCheck_ManualPlacementIsClean(t *testing.T) {
	cfg := newSite(t, "author_bio:\n  auto: false\n", map[string]string{
		"a.md": post("A", "2025-01-01", "", "text\n\n{{< author-bio >}}\n"),
	})

	problems, err := Check(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.False(t, HasErrors(problems))
}

func TestCheck_Canceled(t *testing.T) {
	cfg := newSite(t, "", map[string]string{"a.md": post("A", "2025-01-01", "", "x\n")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}
