package commands

import (
	"context"
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Override build.output_dir (relative to the config file)"`
	Drafts      bool   `short:"D" help:"Include draft pages"`
	Incremental bool   `short:"i" help:"Skip pages unchanged since the last build"`
	Clean       bool   `help:"Remove the output directory before building"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	b.apply(cfg)

	report, err := RunBuild(g.context(), cfg, g.logger())
	if report != nil {
		_, _ = fmt.Fprintln(g.out(), report.Summary())
		for _, w := range report.Warnings {
			_, _ = fmt.Fprintf(g.out(), "warning: %s\n", w)
		}
	}
	return err
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Build.OutputDir = b.Output
	}
	if b.Drafts {
		cfg.Build.Drafts = true
	}
	if b.Incremental {
		cfg.Build.Incremental = true
	}
	if b.Clean {
		cfg.Build.Clean = true
	}
}

// RunBuild builds the site once and writes the metrics textfile when one is
// configured.
func RunBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*site.Report, error) {
	builder := site.NewBuilder(cfg).WithLogger(logger)

	var reg *prom.Registry
	if cfg.Metrics.Textfile != "" {
		reg = prom.NewRegistry()
		builder.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}

	report, err := builder.Build(ctx)

	if reg != nil {
		path := cfg.MetricsPath()
		if werr := metrics.WriteTextfile(path, reg); werr != nil {
			logger.Warn("Could not write metrics", logfields.Path(path), logfields.Error(werr))
		} else {
			logger.Debug("Metrics written", logfields.Path(path))
		}
	}
	return report, err
}
