package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// runCLI parses args like the binary does and runs the selected command.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("blogbuilder"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Global{
		Ctx:    context.Background(),
		Out:    &out,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	err = kctx.Run(g, &cli)
	return out.String(), err
}

func initSite(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "blogbuilder.yaml")
	out, err := runCLI(t, "--config", cfgPath, "init")
	require.NoError(t, err)
	require.Contains(t, out, "initialized successfully")
	return dir, cfgPath
}

func writePage(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, "content", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestInitThenBuild(t *testing.T) {
	dir, cfgPath := initSite(t)
	assert.FileExists(t, filepath.Join(dir, "content", "posts", "hello-world.md"))

	out, err := runCLI(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "pages=1")
	assert.Contains(t, out, "outcome=success")

	html, err := os.ReadFile(filepath.Join(dir, "public", "posts", "hello-world", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<aside class="author-bio">`)
	assert.Contains(t, string(html), "Your Name")
	assert.FileExists(t, filepath.Join(dir, "public", "build-report.yaml"))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	_, cfgPath := initSite(t)

	_, err := runCLI(t, "--config", cfgPath, "init")
	require.Error(t, err)

	_, err = runCLI(t, "--config", cfgPath, "init", "--force")
	require.NoError(t, err)
}

func TestBuild_OverridesAndMetrics(t *testing.T) {
	dir, cfgPath := initSite(t)
	cfg, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, append(cfg, []byte("metrics:\n  textfile: metrics/blog.prom\n")...), 0o600))
	writePage(t, dir, "posts/draft.md", "---\ntitle: Draft\ndate: 2025-01-01\ndraft: true\n---\nwip\n")

	_, err = runCLI(t, "--config", cfgPath, "build", "--drafts", "--output", "dist")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "dist", "posts", "draft", "index.html"))
	prom, err := os.ReadFile(filepath.Join(dir, "metrics", "blog.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `blogbuilder_build_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, string(prom), `blogbuilder_author_bio_decisions_total{shown="true"} 2`)
}

func TestBuild_MissingConfig(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "build")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
	assert.Equal(t, 7, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestDecide(t *testing.T) {
	dir, cfgPath := initSite(t)
	hidden := writePage(t, dir, "posts/hidden.md", "---\ntitle: Hidden\ndate: 2025-01-01\nhide_author_bio: true\n---\nx\n")

	out, err := runCLI(t, "--config", cfgPath, "decide", hidden)
	require.NoError(t, err)
	assert.Contains(t, out, "show_author_bio: false")
	assert.Contains(t, out, "author_name: Your Name")

	shown := filepath.Join(dir, "content", "posts", "hello-world.md")
	out, err = runCLI(t, "--config", cfgPath, "decide", "--format", "json", shown)
	require.NoError(t, err)
	assert.Contains(t, out, `"show_author_bio": true`)
	assert.Contains(t, out, `"author_linkedin": "https://www.linkedin.com/in/your-handle"`)
}

func TestDecide_UnparsablePage(t *testing.T) {
	dir, cfgPath := initSite(t)
	broken := writePage(t, dir, "broken.md", "---\ntitle: x\n")

	_, err := runCLI(t, "--config", cfgPath, "decide", broken)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryContent))
}

func TestCheck(t *testing.T) {
	dir, cfgPath := initSite(t)

	out, err := runCLI(t, "--config", cfgPath, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "0 warning(s)")

	writePage(t, dir, "posts/manual.md", "---\ntitle: M\ndate: 2025-01-01\n---\n{{< author-bio >}}\n")
	out, err = runCLI(t, "--config", cfgPath, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "render twice")

	_, err = runCLI(t, "--config", cfgPath, "check", "--strict")
	require.Error(t, err)

	writePage(t, dir, "posts/bad.md", "---\ntitle: B\ndate: 2025-01-01\nhide_author_bio: maybe\n---\n")
	out, err = runCLI(t, "--config", cfgPath, "check")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryContent))
	assert.Contains(t, out, "hide_author_bio must be a boolean")
}
