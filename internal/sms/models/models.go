// Package models defines SMS log entries, message kinds and the inbound
// command grammar.
package models

import (
	"math"
	"time"
	"unicode/utf8"

	"ridergate/pkg/domain"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Status string

const (
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
	StatusReceived Status = "received"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSent, StatusFailed, StatusReceived:
		return true
	}
	return false
}

// Kind is a log message type. Template kinds render through Render; the
// rest carry staff-written text or mark inbound traffic.
type Kind string

const (
	KindVerification        Kind = "verification"
	KindPaymentConfirmation Kind = "payment_confirmation"
	KindIncidentReceived    Kind = "incident_received"
	KindInvalidJacket       Kind = "invalid_jacket"
	KindHelp                Kind = "help"
	KindStatus              Kind = "status"
	KindUnknownCommand      Kind = "unknown_command"
	KindUnavailable         Kind = "unavailable"

	KindGeneral        Kind = "general"
	KindJacketReady    Kind = "jacket_ready"
	KindIncidentUpdate Kind = "incident_update"
	KindIncoming       Kind = "incoming"
)

// IsFreeText reports whether staff may send k with their own message body.
func (k Kind) IsFreeText() bool {
	switch k {
	case KindGeneral, KindJacketReady, KindIncidentUpdate, KindPaymentConfirmation:
		return true
	}
	return false
}

const (
	MaxMessageLength = 500
	segmentLength    = 160
	costPerSegment   = 4.0
)

// Cost prices a message at 4.0 per started 160-character segment.
func Cost(message string) float64 {
	n := utf8.RuneCountInString(message)
	return math.Ceil(float64(n)/segmentLength) * costPerSegment
}

// Log is one inbound or outbound message.
type Log struct {
	ID              domain.SMSLogID `json:"id"`
	Phone           string          `json:"phone"`
	Message         string          `json:"message"`
	Kind            Kind            `json:"message_type"`
	Direction       Direction       `json:"direction"`
	Status          Status          `json:"status"`
	GatewayResponse string          `json:"gateway_response,omitempty"`
	Cost            float64         `json:"cost"`
	RiderID         *domain.RiderID `json:"rider_id,omitempty"`
	JacketNumber    string          `json:"jacket_number,omitempty"`
	RiderName       string          `json:"rider_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ListFilter struct {
	Phone  string
	Kind   Kind
	Status Status
	Dates  domain.DateRange
}

// Outgoing is a message handed to a Sender.
type Outgoing struct {
	To   string
	From string
	Body string
}

// Receipt is the gateway's answer. Raw is stored verbatim in the log.
type Receipt struct {
	Accepted  bool
	MessageID string
	Raw       string
}

// Delivery is what Send reports back to its caller.
type Delivery struct {
	LogID     domain.SMSLogID `json:"log_id"`
	Success   bool            `json:"success"`
	MessageID string          `json:"message_id,omitempty"`
	Status    Status          `json:"status"`
	Cost      float64         `json:"cost"`
}

// Inbound is a message received from the gateway webhook.
type Inbound struct {
	From      string
	Text      string
	MessageID string
}
