// Package metrics содержит Prometheus-метрики диспетчеризации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операции назначения
const (
	OutcomeCreated     = "created"
	OutcomeExisting    = "existing"
	OutcomeNoResponder = "no_responder"
	OutcomeError       = "error"
)

// Metrics - набор коллекторов. Методы безопасны для nil-получателя, чтобы тесты могли его не создавать.
type Metrics struct {
	assignments  *prometheus.CounterVec
	conflicts    prometheus.Counter
	transitions  *prometheus.CounterVec
	eventsFailed prometheus.Counter
	eta          prometheus.Histogram
}

// New создает коллекторы и регистрирует их в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Assignment attempts by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_reservation_conflicts_total",
			Help: "Responder reservations lost to a concurrent reservation.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_status_transitions_total",
			Help: "Report status transitions by target status.",
		}, []string{"to"}),
		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_events_failed_total",
			Help: "Dispatch events that could not be published.",
		}),
		eta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_eta_minutes",
			Help:    "Estimated arrival time of created assignments.",
			Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120},
		}),
	}
	reg.MustRegister(m.assignments, m.conflicts, m.transitions, m.eventsFailed, m.eta)
	return m
}

func (m *Metrics) AssignmentOutcome(outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ReservationConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) StatusTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) EventFailed() {
	if m == nil {
		return
	}
	m.eventsFailed.Inc()
}

func (m *Metrics) ObserveETA(minutes int) {
	if m == nil {
		return
	}
	m.eta.Observe(float64(minutes))
}
