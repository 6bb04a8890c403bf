package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildCmd `embed:""`
	Debounce time.Duration `default:"300ms" help:"Quiet period before rebuilding"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	w.apply(cfg)
	logger := g.logger()
	ctx := g.context()

	report, err := RunBuild(ctx, cfg, logger)
	if err != nil {
		logger.Error("Initial build failed", logfields.Error(err))
	} else {
		_, _ = fmt.Fprintln(g.out(), report.Summary())
	}

	watcher, err := watch.New(root.Config, cfg.ContentPath(), cfg.LayoutsPath())
	if err != nil {
		return err
	}
	watcher.WithDebounce(w.Debounce).WithLogger(logger)

	return watcher.Run(ctx, func(ctx context.Context, configChanged bool) error {
		if configChanged {
			next, err := config.Load(root.Config)
			if err != nil {
				logger.Error("Keeping previous configuration", logfields.Error(err))
			} else {
				w.apply(next)
				if next.ContentPath() != cfg.ContentPath() || next.LayoutsPath() != cfg.LayoutsPath() {
					logger.Warn("Content or layouts directory changed; restart watch to follow the new location")
				}
				cfg = next
				logger.Info("Configuration reloaded", logfields.Path(root.Config))
			}
		}
		report, err := RunBuild(ctx, cfg, logger)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(g.out(), report.Summary())
		return nil
	})
}
