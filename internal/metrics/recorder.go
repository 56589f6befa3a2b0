package metrics

import "time"

// EnhanceResult labels the outcome of one page enhancement.
type EnhanceResult string

const (
	EnhanceSuccess  EnhanceResult = "success"
	EnhanceFallback EnhanceResult = "fallback"
	EnhanceFailed   EnhanceResult = "failed"
	EnhanceSkipped  EnhanceResult = "skipped"
)

// Outcome labels a whole generation run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines observability hooks for generation metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncEnhanceResult(result EnhanceResult)
	IncEnhanceRetry()
	ObserveGenerateDuration(d time.Duration)
	IncGenerateOutcome(outcome Outcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncEnhanceResult(EnhanceResult)             {}
func (NoopRecorder) IncEnhanceRetry()                           {}
func (NoopRecorder) ObserveGenerateDuration(time.Duration)      {}
func (NoopRecorder) IncGenerateOutcome(Outcome)                 {}
