package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeletionEvents counts recorded deletion events by overall status.
	DeletionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purgarr_deletion_events_total",
		Help: "Deletion events recorded, partitioned by overall status.",
	}, []string{"status"})

	// TargetFailures counts failed delete attempts per external system.
	TargetFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purgarr_target_failures_total",
		Help: "Failed target delete attempts, partitioned by target.",
	}, []string{"target"})

	// Batches counts cascade batch runs.
	Batches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purgarr_cascade_batches_total",
		Help: "Cascade deletion batches executed.",
	})

	// BatchDuration observes wall-clock time per batch.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purgarr_cascade_batch_duration_seconds",
		Help:    "Duration of cascade deletion batches.",
		Buckets: prometheus.DefBuckets,
	})
)
