package metrics

import "github.com/prometheus/client_golang/prometheus"

// Document index Prometheus metrics.
var (
	IndexRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Name:      "index_requests_total",
			Help:      "Total number of document index queries",
		},
		[]string{"backend", "status"},
	)

	IndexRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vitrine",
			Name:      "index_request_duration_seconds",
			Help:      "Document index query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	IndexHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vitrine",
			Name:      "index_hits_returned",
			Help:      "Documents returned per index query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"backend"},
	)

	AutocompleteCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Name:      "autocomplete_cache_total",
			Help:      "Autocomplete cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchesReconciledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Name:      "searches_reconciled_total",
			Help:      "Saved searches updated through bulk reconciliation",
		},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers the index and autocomplete metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexRequestsTotal)
	prometheus.MustRegister(IndexRequestDuration)
	prometheus.MustRegister(IndexHitsReturned)
	prometheus.MustRegister(AutocompleteCacheTotal)
	prometheus.MustRegister(SearchesReconciledTotal)
	indexMetricsRegistered = true
}
