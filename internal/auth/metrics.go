package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for auth metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeLocked             = "locked"
	OutcomeDeactivated        = "deactivated"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeRejected           = "rejected"
	OutcomeError              = "error"
)

type Metrics struct {
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
	Lockouts      prometheus.Counter
}

// NewMetrics creates the auth collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodiary_auth_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodiary_auth_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodiary_auth_token_refreshes_total",
				Help: "Total number of access token refreshes by outcome",
			},
			[]string{"outcome"},
		),
		Lockouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "moodiary_auth_lockouts_total",
				Help: "Total number of accounts locked after repeated failed logins",
			},
		),
	}

	reg.MustRegister(m.Logins, m.Registrations, m.Refreshes, m.Lockouts)
	return m
}

func (m *Metrics) login(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) registration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) refresh(outcome string) {
	if m != nil {
		m.Refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) lockout() {
	if m != nil {
		m.Lockouts.Inc()
	}
}
