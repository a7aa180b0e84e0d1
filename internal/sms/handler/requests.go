package handler

import (
	"strings"

	"ridergate/internal/sms/models"
	"ridergate/internal/sms/service"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

const maxInboundLength = 1000

// InboundRequest is the gateway webhook body.
type InboundRequest struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	MessageID string `json:"messageId"`
	To        string `json:"to,omitempty"`
}

func (r *InboundRequest) Validate() error {
	r.From = strings.TrimSpace(r.From)
	r.Text = strings.TrimSpace(r.Text)
	if r.From == "" {
		return dErrors.New(dErrors.CodeValidation, "from is required")
	}
	if r.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "text is required")
	}
	if len(r.Text) > maxInboundLength {
		return dErrors.New(dErrors.CodeValidation, "text is too long")
	}
	return nil
}

type SendRequest struct {
	Phone       string            `json:"phone"`
	MessageType string            `json:"message_type"`
	Message     string            `json:"message,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	RiderID     string            `json:"rider_id,omitempty"`

	send service.SendRequest
}

func (r *SendRequest) Validate() error {
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if strings.TrimSpace(r.MessageType) == "" {
		return dErrors.New(dErrors.CodeValidation, "message_type is required")
	}
	r.send = service.SendRequest{
		Phone:   r.Phone,
		Kind:    models.Kind(strings.TrimSpace(r.MessageType)),
		Data:    models.Data(r.Data),
		Message: r.Message,
	}
	if r.RiderID != "" {
		id, err := domain.ParseRiderID(r.RiderID)
		if err != nil {
			return err
		}
		r.send.RiderID = &id
	}
	return nil
}
