// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being processed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ListingEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_listing_evaluations_total",
			Help: "Listings evaluated, by caller and sort key",
		},
		[]string{"caller", "sort_key"},
	)

	ListingResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_listing_result_size",
			Help:    "Number of products in an evaluated listing",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SnapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_snapshot_loads_total",
			Help: "Product snapshot loads by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	SnapshotLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_snapshot_load_duration_seconds",
			Help: "Time to load a product snapshot",
		},
		[]string{"source"},
	)

	SnapshotCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_snapshot_cache_requests_total",
			Help: "Snapshot cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
