package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementMutations counts successful engagement state changes by action.
	EngagementMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_engagement_mutations_total",
		Help: "Total number of engagement mutations by action",
	}, []string{"action"})

	// EngagementConflicts counts rejected duplicate engagement mutations by action.
	EngagementConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_engagement_conflicts_total",
		Help: "Total number of engagement mutations rejected as conflicts",
	}, []string{"action"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mosaic_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// UploadFailures counts media-host upload failures.
	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_upload_failures_total",
		Help: "Total number of failed media uploads",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordEngagement increments the mutation counter for the action.
func RecordEngagement(action string) {
	EngagementMutations.WithLabelValues(action).Inc()
}

// RecordEngagementConflict increments the conflict counter for the action.
func RecordEngagementConflict(action string) {
	EngagementConflicts.WithLabelValues(action).Inc()
}
