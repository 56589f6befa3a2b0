package metrics

import (
	"fmt"
	"io"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every metric name.
const Namespace = "md2site"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	generateDuration prom.Histogram
	enhanceResults   *prom.CounterVec
	enhanceRetries   prom.Counter
	generateOutcome  *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		generateDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "generate_duration_seconds",
			Help:      "Total site generation duration",
			Buckets:   prom.DefBuckets,
		}),
		enhanceResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "enhance_results_total",
			Help:      "Page enhancement results by outcome",
		}, []string{"result"}),
		enhanceRetries: prom.NewCounter(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "enhance_retries_total",
			Help:      "Enhancement calls retried after a transient failure",
		}),
		generateOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "generate_outcomes_total",
			Help:      "Generation runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.generateDuration, pr.enhanceResults, pr.enhanceRetries, pr.generateOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEnhanceResult(result EnhanceResult) {
	if p == nil {
		return
	}
	p.enhanceResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncEnhanceRetry() {
	if p == nil {
		return
	}
	p.enhanceRetries.Inc()
}

func (p *PrometheusRecorder) ObserveGenerateDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.generateDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGenerateOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.generateOutcome.WithLabelValues(string(outcome)).Inc()
}

// WriteText gathers g and writes it in the Prometheus text format.
func WriteText(w io.Writer, g prom.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}
	return nil
}
