package observability

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var (
	metricsOnce sync.Once
	testMetrics *Metrics
)

// sharedMetrics returns a process-wide Metrics instance. promauto
// registers with the default registry, so constructing twice panics.
func sharedMetrics() *Metrics {
	metricsOnce.Do(func() {
		testMetrics = NewMetrics("refdedup_test")
	})
	return testMetrics
}

func TestMetrics_RunCounters(t *testing.T) {
	m := sharedMetrics()

	startedBefore := testutil.ToFloat64(m.RunsStarted)
	completedBefore := testutil.ToFloat64(m.RunsCompleted)
	processedBefore := testutil.ToFloat64(m.RecordsProcessed)

	m.RecordRunStarted(25)
	m.RecordRunCompleted(0.5)

	assert.Equal(t, startedBefore+1, testutil.ToFloat64(m.RunsStarted))
	assert.Equal(t, completedBefore+1, testutil.ToFloat64(m.RunsCompleted))
	assert.Equal(t, processedBefore+25, testutil.ToFloat64(m.RecordsProcessed))
}

func TestMetrics_RunFailed(t *testing.T) {
	m := sharedMetrics()

	failedBefore := testutil.ToFloat64(m.RunsFailed)
	m.RecordRunFailed(1.2)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(m.RunsFailed))
}

func TestMetrics_DuplicatesByMethod(t *testing.T) {
	m := sharedMetrics()

	exactBefore := testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("exact-key"))
	fuzzyBefore := testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("fuzzy"))

	m.RecordDuplicates("exact-key", 3)
	m.RecordDuplicates("fuzzy", 1)

	assert.Equal(t, exactBefore+3, testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("exact-key")))
	assert.Equal(t, fuzzyBefore+1, testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("fuzzy")))
}

func TestMetrics_ComparisonsAndSinkFailures(t *testing.T) {
	m := sharedMetrics()

	compBefore := testutil.ToFloat64(m.FuzzyComparisons)
	sinkBefore := testutil.ToFloat64(m.SinkFailures)

	m.RecordFuzzyComparisons(10)
	m.RecordSinkFailures(2)

	assert.Equal(t, compBefore+10, testutil.ToFloat64(m.FuzzyComparisons))
	assert.Equal(t, sinkBefore+2, testutil.ToFloat64(m.SinkFailures))
}
