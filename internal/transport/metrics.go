package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Passive counters only. Nothing here exposes an endpoint; callers
// that want scraping wire the default registry themselves.
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rest_connector_requests_total",
			Help: "Completed HTTP exchanges by device, method and status code",
		},
		[]string{"device", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rest_connector_request_duration_seconds",
			Help:    "HTTP exchange latency by device and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"device", "method"},
	)

	transportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rest_connector_transport_errors_total",
			Help: "Requests that failed before a response was read",
		},
		[]string{"device", "method"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, transportErrors)
}

func observeRequest(device, method string, code int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(device, method, statusLabel(code)).Inc()
	requestDuration.WithLabelValues(device, method).Observe(elapsed.Seconds())
}

func observeError(device, method string) {
	transportErrors.WithLabelValues(device, method).Inc()
}
