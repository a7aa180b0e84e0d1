// Package models holds the read-only payment projection. Payments are owned
// by the payment service; this module only asks whether one completed.
package models

import (
	"time"

	"ridergate/pkg/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Payment struct {
	Reference string         `json:"reference"`
	RiderID   domain.RiderID `json:"rider_id"`
	Amount    float64        `json:"amount"`
	Status    Status         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsCompletedFor reports whether the payment completed and belongs to rider.
func (p *Payment) IsCompletedFor(rider domain.RiderID) bool {
	return p.Status == StatusCompleted && p.RiderID == rider
}
