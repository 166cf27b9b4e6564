// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObservationMutationsTotal counts successful observation writes by operation.
	ObservationMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishlog_observation_mutations_total",
			Help: "Total number of observation create/update/delete operations",
		},
		[]string{"op"},
	)

	// AuthzDecisionsTotal counts role checks by required role and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishlog_authz_decisions_total",
			Help: "Total number of route authorization decisions",
		},
		[]string{"required_role", "decision"},
	)

	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishlog_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration observes request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fishlog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordMutation increments the mutation counter for op.
func RecordMutation(op string) {
	ObservationMutationsTotal.WithLabelValues(op).Inc()
}

// RecordAuthzDecision increments the decision counter.
func RecordAuthzDecision(required, decision string) {
	AuthzDecisionsTotal.WithLabelValues(required, decision).Inc()
}

// RecordLogin increments the login counter.
func RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordRequest observes one served request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
