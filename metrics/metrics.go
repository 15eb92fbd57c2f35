// Package metrics provides Prometheus metrics for the HTTP server and the
// drug knowledge client:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight
//   - http_response_size_bytes{path}
//   - provider_requests_total{outcome} and provider_request_duration_seconds
//   - provider_circuit_breaker_state
//   - drug_queries_total{operation,outcome} and drug_queries_deduplicated_total
//   - rate_limiter_buckets_total
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider call outcomes. Error outcomes use apperrors kind names.
const OutcomeSuccess = "success"

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
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(256, 4, 7), // 256B .. 1MB
		},
		[]string{"path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	ProviderRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Requests sent to the text-generation provider by outcome",
		},
		[]string{"outcome"},
	)

	ProviderRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Text-generation provider latency",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		},
	)

	ProviderBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "provider_circuit_breaker_state",
			Help: "Provider circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	QueryTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drug_queries_total",
			Help: "Drug knowledge queries by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	QueryDeduplicated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drug_queries_deduplicated_total",
			Help: "Provider requests saved by joining an identical in-flight query",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(ProviderRequestTotals)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderBreakerState)
	prometheus.MustRegister(QueryTotals)
	prometheus.MustRegister(QueryDeduplicated)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}
