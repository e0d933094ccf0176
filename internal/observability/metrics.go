package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the reference dedup service.
// Metrics are organized by subsystem: runs, records, and report sinks. All
// counters and histograms are registered via promauto for automatic
// registration with the default Prometheus registry.
type Metrics struct {
	// RunsStarted counts the total number of dedup runs initiated.
	RunsStarted prometheus.Counter

	// RunsCompleted counts the total number of runs that finished successfully.
	RunsCompleted prometheus.Counter

	// RunsFailed counts the total number of runs that ended in failure.
	RunsFailed prometheus.Counter

	// RunDuration observes the end-to-end duration of runs in seconds.
	RunDuration prometheus.Histogram

	// RecordsProcessed counts the total number of input records scanned.
	RecordsProcessed prometheus.Counter

	// RecordsPerRun observes the distribution of batch sizes per run.
	RecordsPerRun prometheus.Histogram

	// DuplicatesDetected counts duplicates found, labeled by match method.
	DuplicatesDetected *prometheus.CounterVec

	// FuzzyComparisons counts pairwise comparisons made by the fuzzy pass.
	FuzzyComparisons prometheus.Counter

	// SinkFailures counts report sink invocations that returned an error.
	SinkFailures prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Runs
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of dedup runs started",
		}),
		RunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Total number of dedup runs completed successfully",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Total number of dedup runs that failed",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of dedup runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),

		// Records
		RecordsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Total number of input records scanned",
		}),
		RecordsPerRun: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_run",
			Help:      "Number of input records per dedup run",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		DuplicatesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_detected_total",
			Help:      "Total number of duplicate records detected by match method",
		}, []string{"method"}),
		FuzzyComparisons: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fuzzy_comparisons_total",
			Help:      "Total number of pairwise comparisons made by the fuzzy pass",
		}),

		// Report sinks
		SinkFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Total number of report sink invocations that failed",
		}),
	}
}

// RecordRunStarted records that a dedup run has started.
func (m *Metrics) RecordRunStarted(recordCount int) {
	m.RunsStarted.Inc()
	m.RecordsProcessed.Add(float64(recordCount))
	m.RecordsPerRun.Observe(float64(recordCount))
}

// RecordRunCompleted records that a dedup run has completed.
func (m *Metrics) RecordRunCompleted(durationSeconds float64) {
	m.RunsCompleted.Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordRunFailed records that a dedup run has failed.
func (m *Metrics) RecordRunFailed(durationSeconds float64) {
	m.RunsFailed.Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordDuplicates records duplicates detected by one pass.
func (m *Metrics) RecordDuplicates(method string, count int) {
	m.DuplicatesDetected.WithLabelValues(method).Add(float64(count))
}

// RecordFuzzyComparisons records pairwise comparisons made during a run.
func (m *Metrics) RecordFuzzyComparisons(count int) {
	m.FuzzyComparisons.Add(float64(count))
}

// RecordSinkFailures records report sink failures during a run.
func (m *Metrics) RecordSinkFailures(count int) {
	m.SinkFailures.Add(float64(count))
}
