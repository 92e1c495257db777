// Package metrics provides Prometheus metrics for the ingest pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesTotal tracks batch completions by final state
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Total number of ingest batches by final state",
		},
		[]string{"tenant_id", "state"},
	)

	// BatchDuration tracks processing duration per batch in seconds
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch processing in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"tenant_id"},
	)

	// RowsProcessed tracks rows through the pipeline by result
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Total number of rows processed by result",
		},
		[]string{"tenant_id", "result"},
	)

	// DuplicatesTotal tracks rejected duplicates by reason
	DuplicatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "duplicates_total",
			Help:      "Total number of duplicate listings rejected by reason",
		},
		[]string{"tenant_id", "reason"},
	)

	// FileParseFailures tracks files that could not be parsed
	FileParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "file_parse_failures_total",
			Help:      "Total number of files that failed to parse",
		},
		[]string{"tenant_id"},
	)

	// StoreRequestDuration tracks listing store request duration
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "store_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of listing store requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status_code"},
	)
)
