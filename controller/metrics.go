package controller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Authentication outcomes recorded per request.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeRejected      = "rejected"
	OutcomeInvalid       = "invalid"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Metrics holds the controller's Prometheus collectors.
type Metrics struct {
	// AttemptsTotal counts authentication attempts by provider and outcome.
	AttemptsTotal *prometheus.CounterVec
	// Duration records authentication latency in seconds by provider.
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_authentication_attempts_total",
				Help: "Authentication attempts",
			},
			[]string{"provider", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "security_authentication_duration_seconds",
				Help:    "Authentication duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.AttemptsTotal, m.Duration)
	}
	return m
}

func (m *Metrics) observe(provider, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(provider, outcome).Inc()
	m.Duration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}
