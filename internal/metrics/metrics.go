// Package metrics declares the prometheus collectors of the board service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Applications counts apply calls by result: created, already_applied,
	// closed, error.
	Applications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_applications_total",
			Help: "Apply calls by result",
		},
		[]string{"result"},
	)

	// JobDeletions counts delete calls by result: deleted, has_applicants,
	// forbidden, error.
	JobDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_job_deletions_total",
			Help: "Posting delete calls by result",
		},
		[]string{"result"},
	)

	// ScoresComputed counts candidate scores, by weight set.
	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_scores_computed_total",
			Help: "Candidate scores computed",
		},
		[]string{"weights"},
	)

	// StoreErrors counts document store failures by operation.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_store_errors_total",
			Help: "Document store failures by operation",
		},
		[]string{"op"},
	)

	// HTTPDuration observes request latency by route and status code.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	// ReconcileRuns counts scheduler cycles by job and result.
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_scheduler_runs_total",
			Help: "Scheduler job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
