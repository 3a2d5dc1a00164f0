// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "petopia_backend_request_duration_seconds",
			Help:    "Duration of backend REST requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "status"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petopia_search_requests_total",
			Help: "Total number of result-set fetches issued by the orchestrator",
		},
		[]string{"kind", "outcome"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petopia_stale_responses_discarded_total",
			Help: "Responses dropped because a newer request had started",
		},
		[]string{"kind"},
	)

	BoundsFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "petopia_bounds_fallbacks_total",
			Help: "Bounds searches that fell back to the unfiltered endpoint",
		},
	)

	OptionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petopia_option_fallbacks_total",
			Help: "Option list loads served from the static fallback tables",
		},
		[]string{"option"},
	)

	OptionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petopia_option_cache_lookups_total",
			Help: "Option cache lookups by result",
		},
		[]string{"result"},
	)

	InFlightFetches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "petopia_inflight_fetches",
			Help: "Number of orchestrator fetches currently in flight",
		},
	)
)

// ObserveRequest records one backend round trip.
func ObserveRequest(path, status string, d time.Duration) {
	BackendRequestDuration.WithLabelValues(path, status).Observe(d.Seconds())
}
