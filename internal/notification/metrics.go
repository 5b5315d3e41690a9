package notification

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"raceday/internal/registration/models"
)

// Metrics counts confirmation dispatch attempts.
type Metrics struct {
	Dispatched *prometheus.CounterVec
	Duration   prometheus.Histogram
}

// NewMetrics creates and registers the dispatch metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raceday_confirmations_dispatched_total",
			Help: "Confirmation email attempts by status and failure reason",
		}, []string{"status", "reason"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "raceday_confirmation_dispatch_duration_seconds",
			Help:    "Time spent composing and sending a confirmation email",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveDispatch records one outcome.
func (m *Metrics) ObserveDispatch(outcome models.DispatchOutcome, start time.Time) {
	m.Dispatched.WithLabelValues(string(outcome.Status), outcome.Reason).Inc()
	m.Duration.Observe(time.Since(start).Seconds())
}
