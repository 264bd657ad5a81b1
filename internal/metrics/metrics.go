// Package metrics defines the Prometheus collectors the API exports on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propnest_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propnest_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SlugProbes counts oracle queries per successful allocation. A run of
	// high values means a title is heavily reused.
	SlugProbes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propnest_slug_probes",
			Help:    "Uniqueness checks needed to allocate one slug",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 100, 1000},
		},
		[]string{"kind"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "propnest_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propnest_external_calls_total",
			Help: "Calls to external services by service and outcome",
		},
		[]string{"service", "outcome"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSlugProbes records how many probes an allocation took.
func ObserveSlugProbes(kind string, probes int) {
	SlugProbes.WithLabelValues(kind).Observe(float64(probes))
}
