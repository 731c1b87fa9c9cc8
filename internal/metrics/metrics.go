// Package metrics exposes Prometheus instrumentation for the storage
// adapter: submission counts, job-status-poll counts, storage error
// counts, and submission latency (spec.md's DOMAIN STACK, grounded on
// the teacher's now-removed internal/telemetry package's
// CounterVec/GaugeVec/HistogramVec pattern).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// JobsSubmitted counts graphs submitted through SubmitJobs,
	// labeled by outcome ("success" or "error").
	JobsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spider",
			Subsystem: "storage",
			Name:      "jobs_submitted_total",
			Help:      "Total number of task graphs submitted to storage, by outcome.",
		},
		[]string{"outcome"},
	)

	// JobStatusPolls counts GetJobStatus calls, labeled by outcome.
	JobStatusPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spider",
			Subsystem: "storage",
			Name:      "job_status_polls_total",
			Help:      "Total number of job status polls, by outcome.",
		},
		[]string{"outcome"},
	)

	// StorageErrors counts storage errors, labeled by the failing
	// operation.
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spider",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage errors, by operation.",
		},
		[]string{"operation"},
	)

	// SubmissionLatency observes the wall-clock duration of
	// SubmitJobs transactions.
	SubmissionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spider",
			Subsystem: "storage",
			Name:      "submission_latency_seconds",
			Help:      "Latency of SubmitJobs transactions.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// OpenSessions tracks the number of currently open storage
	// sessions (one per Driver).
	OpenSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "spider",
			Subsystem: "storage",
			Name:      "open_sessions",
			Help:      "Number of currently open storage sessions.",
		},
	)
)

// Register registers all Spider collectors with reg. Call once at
// process startup; passing a fresh prometheus.Registry keeps tests
// hermetic instead of polluting prometheus.DefaultRegisterer.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{JobsSubmitted, JobStatusPolls, StorageErrors, SubmissionLatency, OpenSessions} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
