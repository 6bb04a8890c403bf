// Package errors provides BuildError, a structured error carrying a category
// and severity so the CLI can pick exit codes and log levels consistently.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory classifies where a failure originated.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryContent    ErrorCategory = "content"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how the build should react.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // the page fails, the build continues
	SeverityWarning ErrorSeverity = "warning" // degraded output
)

// ContextFields carries structured context for a BuildError.
type ContextFields map[string]any

// BuildError is a classified error with optional cause and context.
type BuildError struct {
	Category ErrorCategory `json:"category" yaml:"category"`
	Severity ErrorSeverity `json:"severity" yaml:"severity"`
	Message  string        `json:"message" yaml:"message"`
	Cause    error         `json:"-" yaml:"-"`
	Context  ContextFields `json:"context,omitempty" yaml:"context,omitempty"`
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair and returns the receiver for chaining.
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a BuildError without a cause.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{Category: category, Severity: severity, Message: message}
}

// Wrap creates a BuildError around an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{Category: category, Severity: severity, Message: message, Cause: err}
}

// As returns the first BuildError in err's chain.
func As(err error) (*BuildError, bool) {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsCategory reports whether err's chain holds a BuildError of the category.
func IsCategory(err error, category ErrorCategory) bool {
	be, ok := As(err)
	return ok && be.Category == category
}

// GetCategory returns err's category, or CategoryInternal when unclassified.
func GetCategory(err error) ErrorCategory {
	if be, ok := As(err); ok {
		return be.Category
	}
	return CategoryInternal
}
