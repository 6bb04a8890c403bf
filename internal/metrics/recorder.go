package metrics

import "time"

// ResultLabel enumerates per-page result categories for counters.
type ResultLabel string

const (
	ResultRendered  ResultLabel = "rendered"
	ResultUnchanged ResultLabel = "unchanged"
	ResultSkipped   ResultLabel = "skipped"
	ResultFailed    ResultLabel = "failed"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildSuccess  BuildOutcomeLabel = "success"
	BuildWarning  BuildOutcomeLabel = "warning"
	BuildFailed   BuildOutcomeLabel = "failed"
	BuildCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for site builds. Implementations must
// be safe for concurrent use; pages are rendered in parallel.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObservePageDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	IncAuthorBio(shown bool)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) ObservePageDuration(time.Duration)  {}
func (NoopRecorder) IncPageResult(ResultLabel)          {}
func (NoopRecorder) IncAuthorBio(bool)                  {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)  {}
