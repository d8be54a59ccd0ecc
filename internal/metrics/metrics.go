// Package metrics exposes Prometheus instrumentation for the pipeline and
// the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrimaint",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed pipeline runs by final status.",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agrimaint",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time per pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	RowsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agrimaint",
		Subsystem: "cleaner",
		Name:      "rows_cleaned_total",
		Help:      "Clean sensor rows written.",
	})

	CleaningIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrimaint",
		Subsystem: "cleaner",
		Name:      "issues_total",
		Help:      "Data issues handled during cleaning, by issue type.",
	}, []string{"issue"})

	PredictionsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agrimaint",
		Subsystem: "pipeline",
		Name:      "predictions_written_total",
		Help:      "Prediction rows written.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrimaint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests by route and status code.",
	}, []string{"route", "code"})
)
