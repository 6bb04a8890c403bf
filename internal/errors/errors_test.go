package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := ContentParseFailed("posts/a.md", stderrors.New("boom")).WithContext("line", 3)
	require.Equal(t, "posts/a.md", err.Context["page"])
	require.Equal(t, 3, err.Context["line"])
}

func TestClassificationThroughWrapping(t *testing.T) {
	cause := stderrors.New("disk full")
	be := OutputError("public/index.html", cause)
	wrapped := fmt.Errorf("build: %w", be)

	require.True(t, IsCategory(wrapped, CategoryFileSystem))
	require.False(t, IsCategory(wrapped, CategoryConfig))
	require.Equal(t, CategoryFileSystem, GetCategory(wrapped))
	require.True(t, stderrors.Is(wrapped, cause))

	require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestCLIErrorAdapter(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	require.Equal(t, 0, a.Report(nil))
	require.Equal(t, 7, a.Report(ConfigNotFound("blogbuilder.yaml")))
	require.Contains(t, out.String(), "configuration file not found")
	require.Contains(t, logs.String(), "path=blogbuilder.yaml")

	require.Equal(t, 11, a.ExitCodeFor(RenderFailed("a.md", stderrors.New("x"))))
	require.Equal(t, 9, a.ExitCodeFor(ContentParseFailed("a.md", stderrors.New("x"))))
	require.Equal(t, 1, a.ExitCodeFor(stderrors.New("x")))

	require.Equal(t, 1, a.Report(stderrors.New("boom")))
	require.Contains(t, logs.String(), `msg="Unclassified error" category=internal error=boom`)
	require.Equal(t, "render: page rendering failed", a.FormatError(RenderFailed("a.md", stderrors.New("x"))))
	require.Equal(t, "Error: x", a.FormatError(stderrors.New("x")))
}
