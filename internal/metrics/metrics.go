// Package metrics holds the Prometheus collectors for uploads, searches and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"voterroll/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voterroll"

type metrics struct {
	uploadRuns   *prometheus.CounterVec
	uploadRows   *prometheus.CounterVec
	searches     *prometheus.CounterVec
	searchTime   *prometheus.HistogramVec
	httpDuration *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		uploadRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_runs_total",
			Help:      "Total number of CSV uploads by result.",
		}, []string{"result"}),
		uploadRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_rows_total",
			Help:      "Total number of CSV rows by outcome.",
		}, []string{"outcome"}),
		searches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of voter searches by mode and result.",
		}, []string{"mode", "result"}),
		searchTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Latency distribution for voter searches.",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{"mode"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

// Upload results.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// RecordUpload counts one upload run and, for accepted runs, its rows.
func RecordUpload(result string, outcome *types.UploadOutcome) {
	m := getMetrics()
	m.uploadRuns.WithLabelValues(result).Inc()

	if outcome == nil {
		return
	}

	m.uploadRows.WithLabelValues("inserted").Add(float64(outcome.Inserted))
	m.uploadRows.WithLabelValues("updated").Add(float64(outcome.Updated))
	m.uploadRows.WithLabelValues("unchanged").Add(float64(outcome.Unchanged))
	m.uploadRows.WithLabelValues("skipped").Add(float64(outcome.Skipped))
	m.uploadRows.WithLabelValues("error").Add(float64(outcome.Errors))
}

// Search results.
const (
	SearchOK      = "ok"
	SearchInvalid = "invalid"
	SearchFailed  = "failed"
)

func RecordSearch(mode types.SearchMode, result string, elapsed time.Duration) {
	label := string(mode)
	switch mode {
	case types.SearchModeName, types.SearchModeIdentifier, types.SearchModePhone, types.SearchModeAddress:
	default:
		// keeps client supplied junk out of the label set
		label = "unknown"
	}

	m := getMetrics()
	m.searches.WithLabelValues(label, result).Inc()
	if result == SearchOK {
		m.searchTime.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

var httpMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// ObserveHTTP records one request. Methods outside the standard set are
// labelled "other".
func ObserveHTTP(method string, status int, elapsed time.Duration) {
	if !httpMethods[method] {
		method = "other"
	}
	getMetrics().httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
