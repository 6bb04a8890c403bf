package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration prom.Histogram
	pageDuration  prom.Histogram
	pageResults   *prom.CounterVec
	authorBios    *prom.CounterVec
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the build metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "page_render_duration_seconds",
			Help:      "Duration of rendering a single page",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "page_results_total",
			Help:      "Page results by outcome",
		}, []string{"result"}),
		authorBios: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "author_bio_decisions_total",
			Help:      "Author bio render decisions",
		}, []string{"shown"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.buildDuration, pr.pageDuration, pr.pageResults, pr.authorBios, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncAuthorBio(shown bool) {
	if p == nil || p.authorBios == nil {
		return
	}
	label := "false"
	if shown {
		label = "true"
	}
	p.authorBios.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}
