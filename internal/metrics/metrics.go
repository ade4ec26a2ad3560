// Package metrics provides Prometheus collectors for the time service.
//
// Metrics are registered on the default registry at import time and exposed
// through the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "time_service"

// Outcomes of a GET /time request.
const (
	OutcomeBase     = "base"
	OutcomeAdjusted = "adjusted"
	OutcomeInvalid  = "invalid_timezone"
	OutcomeInternal = "internal_error"
)

var (
	// RequestsTotal counts /time requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of time requests by outcome",
		},
		[]string{"outcome"},
	)

	// RequestDurationSeconds measures /time handler latency.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of time requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// UnroutedRequestsTotal counts requests answered with 404 or 405.
	UnroutedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "unrouted_requests_total",
			Help:      "Total number of requests that matched no route or method",
		},
		[]string{"status"}, // status: not_found, method_not_allowed
	)
)

// RecordRequest records one /time request.
func RecordRequest(outcome string, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(outcome).Inc()
	RequestDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordNotFound records a request for an unknown path.
func RecordNotFound() {
	UnroutedRequestsTotal.WithLabelValues("not_found").Inc()
}

// RecordMethodNotAllowed records a request with an unsupported method.
func RecordMethodNotAllowed() {
	UnroutedRequestsTotal.WithLabelValues("method_not_allowed").Inc()
}
