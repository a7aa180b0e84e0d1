package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions      *prometheus.CounterVec
	LimiterErrors  prometheus.Counter
	FallbackActive prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ridergate_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		LimiterErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ridergate_ratelimit_limiter_errors_total",
			Help: "Errors returned by the primary rate limiter",
		}),
		FallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ridergate_ratelimit_fallback_active",
			Help: "1 while the in-memory fallback limiter is serving requests",
		}),
	}
}

func (m *Metrics) IncDecision(class string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncLimiterError() {
	m.LimiterErrors.Inc()
}

func (m *Metrics) SetFallback(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
