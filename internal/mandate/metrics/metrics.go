package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics provides observability for the mandate module: transition
// outcomes, submissions, and side effects that failed after a commit.
type Metrics struct {
	TransitionsTotal    *prometheus.CounterVec
	SubmissionsTotal    prometheus.Counter
	SideEffectFailures  *prometheus.CounterVec
	ReferenceCollisions prometheus.Counter
	OperationDuration   *prometheus.HistogramVec
}

// New registers the mandate metrics on reg (default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_transitions_total",
			Help: "Lifecycle transitions attempted, by transition and outcome",
		}, []string{"transition", "outcome"}),
		SubmissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mandate_submissions_total",
			Help: "Mandate requests accepted",
		}),
		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_side_effect_failures_total",
			Help: "Notification or document side effects that failed after a committed transition",
		}, []string{"effect"}),
		ReferenceCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mandate_reference_collisions_total",
			Help: "Generated reference numbers that were already taken",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mandate_operation_duration_seconds",
			Help:    "Duration of mandate service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncTransition(transition, outcome string) {
	m.TransitionsTotal.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) IncSubmission() {
	m.SubmissionsTotal.Inc()
}

func (m *Metrics) IncSideEffectFailure(effect string) {
	m.SideEffectFailures.WithLabelValues(effect).Inc()
}

func (m *Metrics) IncReferenceCollision() {
	m.ReferenceCollisions.Inc()
}

// ObserveOperation records the duration of an operation started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
