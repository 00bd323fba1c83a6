package metrics

import (
	"testing"
	"time"

	"voterroll/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func sampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, o.(prometheus.Histogram).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRecordUpload(t *testing.T) {
	m := getMetrics()
	beforeRuns := counterValue(t, m.uploadRuns.WithLabelValues(UploadAccepted))
	beforeInserted := counterValue(t, m.uploadRows.WithLabelValues("inserted"))
	beforeSkipped := counterValue(t, m.uploadRows.WithLabelValues("skipped"))

	RecordUpload(UploadAccepted, &types.UploadOutcome{Inserted: 2, Skipped: 1})

	assert.Equal(t, beforeRuns+1, counterValue(t, m.uploadRuns.WithLabelValues(UploadAccepted)))
	assert.Equal(t, beforeInserted+2, counterValue(t, m.uploadRows.WithLabelValues("inserted")))
	assert.Equal(t, beforeSkipped+1, counterValue(t, m.uploadRows.WithLabelValues("skipped")))
}

func TestRecordRejectedUploadCountsNoRows(t *testing.T) {
	m := getMetrics()
	beforeRows := counterValue(t, m.uploadRows.WithLabelValues("error"))

	RecordUpload(UploadRejected, nil)

	assert.Equal(t, beforeRows, counterValue(t, m.uploadRows.WithLabelValues("error")))
}

func TestRecordSearch(t *testing.T) {
	m := getMetrics()
	before := counterValue(t, m.searches.WithLabelValues("name", SearchInvalid))

	RecordSearch(types.SearchModeName, SearchInvalid, time.Millisecond)
	ObserveHTTP("GET", 400, time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, m.searches.WithLabelValues("name", SearchInvalid)))
}

func TestRecordSearchFoldsUnknownModes(t *testing.T) {
	m := getMetrics()
	before := counterValue(t, m.searches.WithLabelValues("unknown", SearchInvalid))

	RecordSearch(types.SearchMode("drop table"), SearchInvalid, time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, m.searches.WithLabelValues("unknown", SearchInvalid)))
}

func TestObserveHTTPFoldsUnknownMethods(t *testing.T) {
	m := getMetrics()
	before := sampleCount(t, m.httpDuration.WithLabelValues("other", "405"))

	ObserveHTTP("BREWCOFFEE", 405, time.Millisecond)
	ObserveHTTP("X-RANDOM-1234", 405, time.Millisecond)

	assert.Equal(t, before+2, sampleCount(t, m.httpDuration.WithLabelValues("other", "405")))
	assert.False(t, m.httpDuration.DeleteLabelValues("BREWCOFFEE", "405"))

	beforeGet := sampleCount(t, m.httpDuration.WithLabelValues("GET", "200"))
	ObserveHTTP("GET", 200, time.Millisecond)
	assert.Equal(t, beforeGet+1, sampleCount(t, m.httpDuration.WithLabelValues("GET", "200")))
}
