package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search orchestration Prometheus metrics.
var (
	SearchDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dctsearch",
			Name:      "search_dispatches_total",
			Help:      "Total search dispatches by trigger",
		},
		[]string{"trigger"}, // "filters" / "page"
	)

	SearchSupersededTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dctsearch",
			Name:      "search_superseded_total",
			Help:      "Search responses dropped because a newer dispatch was issued",
		},
	)

	SearchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dctsearch",
			Name:      "search_failures_total",
			Help:      "Search dispatch failures by error kind",
		},
		[]string{"kind"}, // "unavailable" / "http" / "timeout" / "malformed" / "other"
	)

	SuggestionFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dctsearch",
			Name:      "suggestion_fetches_total",
			Help:      "Suggestion fetches by outcome",
		},
		[]string{"result"}, // "ok" / "stale" / "error"
	)

	SuggestionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dctsearch",
			Name:      "suggestion_cache_total",
			Help:      "Suggestion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dctsearch",
			Name:      "backend_request_duration_seconds",
			Help:      "Catalog backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "status"}, // operation: "suggestions" / "search" / "query"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search orchestration metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDispatchesTotal)
	prometheus.MustRegister(SearchSupersededTotal)
	prometheus.MustRegister(SearchFailuresTotal)
	prometheus.MustRegister(SuggestionFetchesTotal)
	prometheus.MustRegister(SuggestionCacheTotal)
	prometheus.MustRegister(BackendRequestDuration)
	searchMetricsRegistered = true
}
