// Package metrics exposes the pipeline's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsTotal counts processed jobs by outcome
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_extractor_jobs_total",
		Help: "Processed jobs by outcome.",
	}, []string{"outcome"})

	// StageRetries counts re-attempts by pipeline stage
	StageRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_extractor_stage_retries_total",
		Help: "Retried attempts by pipeline stage.",
	}, []string{"stage"})

	// StageDuration observes stage wall time by pipeline stage
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audio_extractor_stage_duration_seconds",
		Help:    "Stage wall time by pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})
)

// Handler serves the default registry in Prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
