package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets for a whole pass, from 10ms up to two minutes
	passBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}

	// Operations counts store calls made by reconciliation passes
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_sync_store_operations_total",
			Help: "Total number of subscription store calls, by operation and outcome.",
		},
		[]string{"operation", "outcome"}, // outcome: "ok" or an error kind
	)

	// Passes counts reconciliation passes
	Passes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_sync_passes_total",
			Help: "Total number of reconciliation passes, by status.",
		},
		[]string{"status"}, // "ok", "partial" or "aborted"
	)

	// PassDuration measures wall time of reconciliation passes
	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interest_sync_pass_duration_seconds",
			Help:    "Histogram of reconciliation pass duration in seconds.",
			Buckets: passBuckets,
		},
	)

	// DesiredInterests is the size of the interest set of the last pass
	DesiredInterests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interest_sync_desired_interests",
			Help: "Number of interests requested by the most recent pass.",
		},
	)
)

// ObserveOperation records the outcome of one store call. An empty outcome
// means success.
func ObserveOperation(operation, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	Operations.WithLabelValues(operation, outcome).Inc()
}

// ObservePass records a finished pass
func ObservePass(status string, desired int, elapsed time.Duration) {
	Passes.WithLabelValues(status).Inc()
	PassDuration.Observe(elapsed.Seconds())
	DesiredInterests.Set(float64(desired))
}

// WriteTextfile dumps the default registry in the node-exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
