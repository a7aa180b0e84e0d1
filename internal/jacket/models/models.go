// Package models holds jacket orders and production batches.
package models

import (
	"fmt"
	"strings"
	"time"

	"ridergate/pkg/domain"
)

type Status string

const (
	StatusOrdered        Status = "ordered"
	StatusProduced       Status = "produced"
	StatusQualityChecked Status = "quality_checked"
	StatusDistributed    Status = "distributed"
	StatusLost           Status = "lost"
	StatusDamaged        Status = "damaged"
	StatusReturned       Status = "returned"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOrdered, StatusProduced, StatusQualityChecked, StatusDistributed,
		StatusLost, StatusDamaged, StatusReturned:
		return true
	}
	return false
}

// Jacket is one physical jacket ordered for a rider. JacketNumber and
// JurisdictionID are copied from the rider when the order is placed.
type Jacket struct {
	ID                domain.JacketID       `json:"id"`
	JacketNumber      string                `json:"jacket_number"`
	RiderID           domain.RiderID        `json:"rider_id"`
	RiderName         string                `json:"rider_name,omitempty"`
	BatchID           *domain.BatchID       `json:"production_batch_id,omitempty"`
	PaymentReference  string                `json:"payment_reference"`
	JurisdictionID    domain.JurisdictionID `json:"lga_id"`
	Status            Status                `json:"status"`
	Notes             string                `json:"notes,omitempty"`
	DistributedBy     *domain.StaffID       `json:"distributed_by,omitempty"`
	DistributionDate  *time.Time            `json:"distribution_date,omitempty"`
	RiderConfirmation bool                  `json:"rider_confirmation"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// AppendNote adds note on a new line, keeping earlier notes.
func (j *Jacket) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if j.Notes == "" {
		j.Notes = note
		return
	}
	j.Notes += "\n" + note
}

func (j *Jacket) CanDistribute() bool {
	return j.Status == StatusQualityChecked
}

type Order struct {
	RiderID          domain.RiderID
	PaymentReference string
	BatchID          *domain.BatchID
	Notes            string
}

type Distribution struct {
	DistributedBy     domain.StaffID
	Date              *time.Time
	RiderConfirmation bool
}

type ListFilter struct {
	Status       Status
	Jurisdiction domain.JurisdictionID
	BatchID      *domain.BatchID
}

// Batch is a production run of jackets for one jurisdiction.
type Batch struct {
	ID                  domain.BatchID        `json:"id"`
	BatchNumber         string                `json:"batch_number"`
	JurisdictionID      domain.JurisdictionID `json:"lga_id"`
	JurisdictionName    string                `json:"lga_name,omitempty"`
	Quantity            int                   `json:"quantity"`
	CostPerUnit         float64               `json:"cost_per_unit"`
	TotalCost           float64               `json:"total_cost"`
	ProductionStartDate time.Time             `json:"production_start_date"`
	Notes               string                `json:"notes,omitempty"`
	CreatedBy           domain.StaffID        `json:"created_by"`
	CreatedAt           time.Time             `json:"created_at"`
	Jackets             []*Jacket             `json:"jackets,omitempty"`
}

type BatchSpec struct {
	Jurisdiction        domain.JurisdictionID
	Quantity            int
	CostPerUnit         float64
	ProductionStartDate time.Time
	Notes               string
}

// MaxBatchSequence is the largest per-year batch sequence the number holds.
const MaxBatchSequence = 999

// FormatBatchNumber renders BATCH-<year>-<CODE>-<NNN>.
func FormatBatchNumber(year int, code string, sequence int) string {
	return fmt.Sprintf("BATCH-%d-%s-%03d", year, code, sequence)
}
