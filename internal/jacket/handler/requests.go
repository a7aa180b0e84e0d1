package handler

import (
	"strings"
	"time"

	"ridergate/internal/jacket/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

const dateLayout = "2006-01-02"

type OrderRequest struct {
	RiderID          string `json:"rider_id"`
	PaymentReference string `json:"payment_reference"`
	BatchID          string `json:"production_batch_id,omitempty"`
	Notes            string `json:"notes,omitempty"`

	order models.Order
}

func (r *OrderRequest) Validate() error {
	rider, err := domain.ParseRiderID(strings.TrimSpace(r.RiderID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "rider_id must be a rider id")
	}
	r.PaymentReference = strings.TrimSpace(r.PaymentReference)
	if r.PaymentReference == "" {
		return dErrors.New(dErrors.CodeValidation, "payment_reference is required")
	}
	r.order = models.Order{RiderID: rider, PaymentReference: r.PaymentReference, Notes: r.Notes}
	if v := strings.TrimSpace(r.BatchID); v != "" {
		batch, err := domain.ParseBatchID(v)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "production_batch_id must be a batch id")
		}
		r.order.BatchID = &batch
	}
	return nil
}

type StatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (r *StatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if !models.Status(r.Status).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid jacket status")
	}
	return nil
}

type DistributeRequest struct {
	DistributedBy     string `json:"distributed_by,omitempty"`
	DistributionDate  string `json:"distribution_date,omitempty"`
	RiderConfirmation bool   `json:"rider_confirmation"`

	distribution models.Distribution
}

func (r *DistributeRequest) Validate() error {
	d := models.Distribution{RiderConfirmation: r.RiderConfirmation}
	if v := strings.TrimSpace(r.DistributedBy); v != "" {
		staff, err := domain.ParseStaffID(v)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "distributed_by must be a staff id")
		}
		d.DistributedBy = staff
	}
	if v := strings.TrimSpace(r.DistributionDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "distribution_date must be YYYY-MM-DD")
		}
		d.Date = &t
	}
	r.distribution = d
	return nil
}

type BatchRequest struct {
	JurisdictionID      int     `json:"lga_id"`
	Quantity            int     `json:"quantity"`
	CostPerUnit         float64 `json:"cost_per_unit"`
	ProductionStartDate string  `json:"production_start_date,omitempty"`
	Notes               string  `json:"notes,omitempty"`

	spec models.BatchSpec
}

func (r *BatchRequest) Validate() error {
	if r.JurisdictionID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "lga_id is required")
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if r.CostPerUnit < 0 {
		return dErrors.New(dErrors.CodeValidation, "cost_per_unit must not be negative")
	}
	r.spec = models.BatchSpec{
		Jurisdiction: domain.JurisdictionID(r.JurisdictionID),
		Quantity:     r.Quantity,
		CostPerUnit:  r.CostPerUnit,
		Notes:        strings.TrimSpace(r.Notes),
	}
	if v := strings.TrimSpace(r.ProductionStartDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "production_start_date must be YYYY-MM-DD")
		}
		r.spec.ProductionStartDate = t
	}
	return nil
}
