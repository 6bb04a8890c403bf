package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// Global carries state shared by all commands.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogbuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the site into the output directory"`
	Decide DecideCmd `cmd:"" help:"Print the author bio render decision for one page"`
	Check  CheckCmd  `cmd:"" help:"Check content front matter without writing output"`
	Watch  WatchCmd  `cmd:"" help:"Build, then rebuild whenever content, layouts or config change"`
	Init   InitCmd   `cmd:"" help:"Initialize a new site configuration"`
}

// AfterApply runs after flag parsing; sets up logging until the config file
// is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(config.LoggingConfig{}.NewLogger(os.Stderr, c.Verbose))
	return nil
}

// loadConfig loads the site configuration and switches logging to its
// settings.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if g.Logger == nil {
		logger := cfg.Logging.NewLogger(os.Stderr, root.Verbose)
		slog.SetDefault(logger)
	}
	return cfg, nil
}
