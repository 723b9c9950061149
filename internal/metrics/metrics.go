package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ppdb"

// Metrics holds the counters the auth surface reports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	verifications *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "verifications_total",
			Help:      "Session verifications by audience and outcome",
		}, []string{"audience", "outcome"}),
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Role gate decisions by outcome",
		}, []string{"outcome"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by audience and outcome",
		}, []string{"audience", "outcome"}),
	}
}

func (m *Metrics) Verification(audience, outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(audience, outcome).Inc()
}

func (m *Metrics) GateDecision(outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Login(audience, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(audience, outcome).Inc()
}
