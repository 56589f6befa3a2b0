// Package metrics provides observability hooks for site generation.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites. The CLI swaps in a
// PrometheusRecorder when metrics are enabled and can dump the registry in
// the text exposition format with WriteText.
package metrics
