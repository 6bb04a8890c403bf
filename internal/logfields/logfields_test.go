package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelperKeys(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		val  string
	}{
		{BuildID("b1"), KeyBuildID, "b1"},
		{Stage("render"), KeyStage, "render"},
		{Page("posts/a.md"), KeyPage, "posts/a.md"},
		{Section("posts"), KeySection, "posts"},
		{Output("public"), KeyOutput, "public"},
		{Path("/tmp/x"), KeyPath, "/tmp/x"},
		{Error(errors.New("boom")), KeyError, "boom"},
		{Error(nil), KeyError, ""},
	}
	for _, c := range cases {
		require.Equal(t, c.key, c.attr.Key)
		require.Equal(t, c.val, c.attr.Value.String())
	}
}

func TestTypedHelpers(t *testing.T) {
	require.Equal(t, slog.KindBool, AuthorBio(true).Value.Kind())
	require.True(t, AuthorBio(true).Value.Bool())
	require.Equal(t, int64(3), Pages(3).Value.Int64())
	require.InDelta(t, 1.5, DurationMS(1.5).Value.Float64(), 0.0001)
}
