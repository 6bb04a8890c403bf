package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// ReportFile is the name of the build report inside the output directory.
const ReportFile = "build-report.yaml"

// Warning is a non-fatal problem attached to a page.
type Warning struct {
	Page    string `yaml:"page,omitempty"`
	Message string `yaml:"message"`
}

func (w Warning) String() string {
	if w.Page == "" {
		return w.Message
	}
	return w.Page + ": " + w.Message
}

// Report summarises one build.
type Report struct {
	SchemaVersion int                       `yaml:"schema_version"`
	BuildID       string                    `yaml:"build_id"`
	Version       string                    `yaml:"version"`
	Start         time.Time                 `yaml:"start"`
	End           time.Time                 `yaml:"end"`
	Duration      time.Duration             `yaml:"duration"`
	Outcome       metrics.BuildOutcomeLabel `yaml:"outcome"`

	Pages     int `yaml:"pages"`
	Rendered  int `yaml:"rendered"`
	Unchanged int `yaml:"unchanged"`
	Skipped   int `yaml:"skipped"`
	Lists     int `yaml:"lists"`

	BiosShown     int `yaml:"bios_shown"`
	BiosHidden    int `yaml:"bios_hidden"`
	DuplicateBios int `yaml:"duplicate_bios"`

	Warnings []Warning `yaml:"warnings,omitempty"`

	mu sync.Mutex
}

func newReport(id string) *Report {
	return &Report{
		SchemaVersion: 1,
		BuildID:       id,
		Version:       version.Version,
		Start:         time.Now(),
	}
}

func (r *Report) warn(page, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Warning{Page: page, Message: msg})
}

// finish stamps the end time and derives the outcome. A non-nil err marks
// the build failed, or canceled when the context was canceled.
func (r *Report) finish(err error, canceled bool) {
	r.End = time.Now()
	r.Duration = r.End.Sub(r.Start)
	switch {
	case canceled:
		r.Outcome = metrics.BuildCanceled
	case err != nil:
		r.Outcome = metrics.BuildFailed
	case len(r.Warnings) > 0:
		r.Outcome = metrics.BuildWarning
	default:
		r.Outcome = metrics.BuildSuccess
	}
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("pages=%d rendered=%d unchanged=%d skipped=%d lists=%d bios_shown=%d bios_hidden=%d duplicate_bios=%d warnings=%d duration=%s outcome=%s",
		r.Pages, r.Rendered, r.Unchanged, r.Skipped, r.Lists, r.BiosShown, r.BiosHidden, r.DuplicateBios,
		len(r.Warnings), r.Duration.Truncate(time.Millisecond), r.Outcome)
}

// Persist writes the report atomically into dir.
func (r *Report) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
