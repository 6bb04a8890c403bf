package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns errors into exit codes and user-facing messages.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates an adapter writing messages to stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor maps an error to a process exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	be, ok := As(err)
	if !ok {
		return 1
	}
	switch be.Category {
	case CategoryValidation:
		return 2
	case CategoryConfig:
		return 7
	case CategoryContent:
		return 9
	case CategoryRender, CategoryFileSystem:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError renders err for display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	be, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return be.Error()
	}
	switch be.Category {
	case CategoryConfig, CategoryValidation:
		return be.Message
	default:
		return fmt.Sprintf("%s: %s", be.Category, be.Message)
	}
}

// Report logs err with its context and prints the user message. It returns
// the exit code the caller should use.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) logError(err error) {
	attrs := []slog.Attr{slog.String("category", string(GetCategory(err)))}
	be, ok := As(err)
	if !ok {
		attrs = append(attrs, slog.String("error", err.Error()))
		a.logger.LogAttrs(context.Background(), slog.LevelError, "Unclassified error", attrs...)
		return
	}

	for k, v := range be.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if be.Cause != nil {
		attrs = append(attrs, slog.String("cause", be.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(be.Severity), be.Message, attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	if severity == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}
