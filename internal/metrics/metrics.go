// Package metrics exposes Prometheus collectors for the discovery service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	providerCallsTotal         *prometheus.CounterVec
	providerCostTotal          *prometheus.CounterVec
	throttleDelaySeconds       *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)

		providerCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_provider_calls_total",
				Help: "Total external provider calls, labeled by category.",
			},
			[]string{"category"},
		)

		providerCostTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_provider_cost_dollars_total",
				Help: "Accumulated provider spend in dollars, labeled by category.",
			},
			[]string{"category"},
		)

		throttleDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discovery_throttle_delay_seconds",
				Help:    "Histogram of provider throttle wait durations.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveProviderCall records one charged external call.
func ObserveProviderCall(category string, cost float64) {
	Init()
	providerCallsTotal.WithLabelValues(category).Inc()
	if cost > 0 {
		providerCostTotal.WithLabelValues(category).Add(cost)
	}
}

// ObserveThrottleDelay records the duration of a throttle wait.
func ObserveThrottleDelay(provider string, duration time.Duration) {
	Init()
	throttleDelaySeconds.WithLabelValues(provider).Observe(duration.Seconds())
}
