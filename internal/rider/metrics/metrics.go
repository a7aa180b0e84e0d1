package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks rider registrations and jacket number contention.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	RegisterDuration prometheus.Histogram
	JacketConflicts  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ridergate_riders_registered_total",
			Help: "Riders registered by jurisdiction code",
		}, []string{"jurisdiction"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ridergate_register_duration_seconds",
			Help:    "Duration of rider registration including jacket number allocation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		JacketConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ridergate_jacket_number_conflicts_total",
			Help: "Registrations retried after a jacket number uniqueness conflict",
		}),
	}
}

func (m *Metrics) IncRegistered(jurisdictionCode string) {
	m.Registrations.WithLabelValues(jurisdictionCode).Inc()
}

// ObserveRegister records the duration of a registration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncJacketConflict() {
	m.JacketConflicts.Inc()
}
