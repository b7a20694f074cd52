// Package metrics exposes prometheus instrumentation for the alerting
// engine itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the engine's prometheus collectors. A nil Recorder is
// valid and records nothing, so instrumentation stays optional in tests.
type Recorder struct {
	alertsFired  *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
	escalations  prometheus.Counter
	evalFailures prometheus.Counter
	activeAlerts prometheus.Gauge
}

// Delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// NewRecorder creates and registers the engine collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		alertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormalert_alerts_fired_total",
			Help: "Alerts created, by severity and type.",
		}, []string{"severity", "type"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stormalert_deliveries_total",
			Help: "Channel delivery attempts, by channel and outcome.",
		}, []string{"channel", "outcome"}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stormalert_escalations_total",
			Help: "Alerts automatically escalated.",
		}),
		evalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stormalert_evaluation_failures_total",
			Help: "Rule evaluations aborted by panic or bad configuration.",
		}),
		activeAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stormalert_active_alerts",
			Help: "Currently active (non-resolved) alerts.",
		}),
	}
	reg.MustRegister(r.alertsFired, r.deliveries, r.escalations, r.evalFailures, r.activeAlerts)
	return r
}

// AlertFired counts one created alert.
func (r *Recorder) AlertFired(severity, alertType string) {
	if r == nil {
		return
	}
	r.alertsFired.WithLabelValues(severity, alertType).Inc()
}

// Delivery counts one delivery attempt outcome.
func (r *Recorder) Delivery(channel, outcome string) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(channel, outcome).Inc()
}

// Escalated counts one automatic escalation.
func (r *Recorder) Escalated() {
	if r == nil {
		return
	}
	r.escalations.Inc()
}

// EvaluationFailed counts one contained per-rule evaluation failure.
func (r *Recorder) EvaluationFailed() {
	if r == nil {
		return
	}
	r.evalFailures.Inc()
}

// SetActiveAlerts updates the active-alert gauge.
func (r *Recorder) SetActiveAlerts(n int) {
	if r == nil {
		return
	}
	r.activeAlerts.Set(float64(n))
}
