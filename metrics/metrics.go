// Package metrics provides Prometheus metrics for the medication API:
// HTTP server series, external API client series, cache effectiveness and
// circuit breaker state. All collectors register with the default registry
// at package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	ExternalAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_calls_total",
			Help: "Outbound calls to drug data APIs",
		},
		[]string{"api", "operation", "outcome"},
	)

	ExternalAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_api_duration_seconds",
			Help:    "Outbound API call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"api", "operation"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Cache hits for external API lookups",
		},
		[]string{"api"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Cache misses for external API lookups",
		},
		[]string{"api"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per API (0=closed, 1=half-open, 2=open)",
		},
		[]string{"api"},
	)

	APIHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "external_api_healthy",
			Help: "Health probe result per API (1=healthy)",
		},
		[]string{"api"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(ExternalAPICalls)
	prometheus.MustRegister(ExternalAPIDuration)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(BreakerState)
	prometheus.MustRegister(APIHealthy)
}
