package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"ridergate/internal/sms/models"
)

// LogSender writes messages to the operational log instead of delivering
// them. With an empty reason it reports every message as accepted, which
// suits development; with a reason it reports a refusal.
type LogSender struct {
	logger *slog.Logger
	reason string
}

func NewLogSender(logger *slog.Logger, reason string) *LogSender {
	return &LogSender{logger: logger, reason: reason}
}

func (s *LogSender) Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error) {
	id := "log-" + uuid.NewString()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "sms written to log",
			"to", msg.To,
			"from", msg.From,
			"length", len(msg.Body),
			"message_id", id,
			"reason", s.reason,
		)
	}
	resp := map[string]string{"code": "ok", "message_id": id, "sink": "log"}
	if s.reason != "" {
		resp = map[string]string{"code": "rejected", "error": s.reason, "sink": "log"}
	}
	raw, _ := json.Marshal(resp)
	return &models.Receipt{
		Accepted:  s.reason == "",
		MessageID: resp["message_id"],
		Raw:       string(raw),
	}, nil
}
