package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	// Register outcomes: rejected, already_registered, registered, error
	Outcomes *prometheus.CounterVec

	// Confirmation status written back after dispatch
	Confirmations *prometheus.CounterVec

	// Submission guard results: acquired, contended, error
	Guard *prometheus.CounterVec

	RegisterLatency prometheus.Histogram
}

// New creates the registration metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceday_registration_outcomes_total",
			Help: "Registration attempts by outcome and race category",
		}, []string{"outcome", "category"}),

		Confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceday_registration_confirmation_status_total",
			Help: "Confirmation statuses recorded on registrations",
		}, []string{"status"}),

		Guard: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceday_registration_guard_total",
			Help: "Submission guard results",
		}, []string{"result"}),

		RegisterLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "raceday_registration_duration_seconds",
			Help:    "Duration of a registration including confirmation dispatch",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementOutcome records a Register result.
func (m *Metrics) IncrementOutcome(outcome, category string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, category).Inc()
	}
}

// IncrementConfirmation records a status write-back.
func (m *Metrics) IncrementConfirmation(status string) {
	if m != nil {
		m.Confirmations.WithLabelValues(status).Inc()
	}
}

// IncrementGuard records a submission guard result.
func (m *Metrics) IncrementGuard(result string) {
	if m != nil {
		m.Guard.WithLabelValues(result).Inc()
	}
}

// ObserveRegisterLatency records the total Register duration.
func (m *Metrics) ObserveRegisterLatency(d time.Duration) {
	if m != nil {
		m.RegisterLatency.Observe(d.Seconds())
	}
}
