package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks verification outcomes and attempt-log health.
type Metrics struct {
	Verifications     *prometheus.CounterVec
	VerifyDuration    prometheus.Histogram
	AttemptLogFailure prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ridergate_verifications_total",
			Help: "Verifications by outcome and method",
		}, []string{"outcome", "method"}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ridergate_verify_duration_seconds",
			Help:    "Duration of verification requests including the attempt log write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		AttemptLogFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ridergate_verification_log_failures_total",
			Help: "Verification attempts that could not be written to the log",
		}),
	}
}

func (m *Metrics) IncVerification(outcome, method string) {
	m.Verifications.WithLabelValues(outcome, method).Inc()
}

// ObserveVerify records the duration of a verification.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncAttemptLogFailure() {
	m.AttemptLogFailure.Inc()
}
