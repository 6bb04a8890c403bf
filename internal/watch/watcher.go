// Package watch rebuilds the site when content, layouts or the configuration
// file change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// DefaultDebounce collapses bursts of events (editors often write a file in
// several steps) into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc is called after changes settle. configChanged reports whether
// the configuration file was among the changes.
type RebuildFunc func(ctx context.Context, configChanged bool) error

// Watcher monitors a configuration file and a set of directory trees.
type Watcher struct {
	configPath string
	dirs       []string
	debounce   time.Duration
	logger     *slog.Logger
}

// New returns a Watcher for configPath and the given directories. Missing
// directories are skipped when Run starts.
func New(configPath string, dirs ...string) (*Watcher, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	w := &Watcher{configPath: absConfig, debounce: DefaultDebounce, logger: slog.Default()}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", d, err)
		}
		w.dirs = append(w.dirs, abs)
	}
	return w, nil
}

// WithDebounce overrides the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Run watches until ctx is done, calling rebuild once per settled burst of
// changes. Rebuild errors are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	// the directory is watched rather than the file so editors that replace
	// the file on save keep triggering events
	if err := fw.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	for _, d := range w.dirs {
		if err := w.addTree(fw, d); err != nil {
			return err
		}
	}
	w.logger.Info("Watching for changes", logfields.Path(w.configPath), slog.Any("dirs", w.dirs))

	var (
		timer         *time.Timer
		fire          <-chan time.Time
		configChanged bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			isConfig, relevant := w.classify(event)
			if !relevant {
				continue
			}
			if event.Op.Has(fsnotify.Create) && !isConfig {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.logger.Warn("Could not watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			configChanged = configChanged || isConfig
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))

		case <-fire:
			fire = nil
			changed := configChanged
			configChanged = false
			if err := rebuild(ctx, changed); err != nil {
				w.logger.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// classify reports whether event concerns the config file, and whether it is
// relevant at all.
func (w *Watcher) classify(event fsnotify.Event) (isConfig, relevant bool) {
	if event.Op == fsnotify.Chmod {
		return false, false
	}
	name := filepath.Clean(event.Name)
	if name == w.configPath {
		return true, true
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false, false
	}
	for _, d := range w.dirs {
		if name == d || strings.HasPrefix(name, d+string(filepath.Separator)) {
			return false, true
		}
	}
	return false, false
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		w.logger.Debug("Skipping missing directory", logfields.Path(dir))
		return nil
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
