package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts SMS traffic by direction and outcome.
type Metrics struct {
	Messages *prometheus.CounterVec
	Commands *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Messages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ridergate_sms_messages_total",
			Help: "SMS messages handled by direction and status",
		}, []string{"direction", "status"}),
		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ridergate_sms_commands_total",
			Help: "Inbound SMS commands by action",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncMessage(direction, status string) {
	m.Messages.WithLabelValues(direction, status).Inc()
}

func (m *Metrics) IncCommand(action string) {
	m.Commands.WithLabelValues(action).Inc()
}
