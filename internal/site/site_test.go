package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

const testParams = `base_url: https://gauravpadam.dev/
title: Notes
params:
  authors_name: Gaurav Padam
  authors_description: Backend engineer.
  authors_linkedin: https://linkedin.com/in/x
build:
  concurrency: 4
`

// newSite writes content files below a temporary site root and returns the
// loaded configuration. extra is appended to the base config.
func newSite(t *testing.T, extra string, files map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, "content", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content"), 0o755))

	path := filepath.Join(root, config.DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(testParams+extra), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.OutputPath(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func post(title, date, extra, body string) string {
	return "---\ntitle: " + title + "\ndate: " + date + "\n" + extra + "---\n" + body
}
