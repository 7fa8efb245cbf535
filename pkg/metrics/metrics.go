// Package metrics defines the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DatabaseConnectionsGauge tracks database pool connections by state
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections",
			Help: "Database connection pool state",
		},
		[]string{"state"},
	)

	// InvestmentsCreatedTotal counts investments created through the API
	InvestmentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "investments_created_total",
			Help: "Total number of investments created",
		},
	)

	// InvestmentTransitionsTotal counts lifecycle transitions by target status
	InvestmentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "investment_transitions_total",
			Help: "Total number of investment status transitions",
		},
		[]string{"status"},
	)

	// CompletionSweepRecordsTotal counts records handled by the completion sweep
	CompletionSweepRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_sweep_records_total",
			Help: "Investment records processed by the completion sweep",
		},
		[]string{"result"},
	)

	// CompletionSweepDuration observes how long each completion sweep takes
	CompletionSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "completion_sweep_duration_seconds",
			Help:    "Duration of completion sweep runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// CompletionSweepLastRun records the unix timestamp of the last sweep
	CompletionSweepLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "completion_sweep_last_run_timestamp",
			Help: "Unix timestamp of the last completion sweep run",
		},
	)

	// CompletionSweepSkippedTotal counts sweep invocations skipped by the guard
	CompletionSweepSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "completion_sweep_skipped_total",
			Help: "Sweep invocations skipped because a sweep was already running",
		},
	)

	// NotificationsSentTotal counts notification emails by kind and outcome
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notification emails sent by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// CacheOperationsTotal counts plan cache hits and misses
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations by result",
		},
		[]string{"operation", "result"},
	)
)
