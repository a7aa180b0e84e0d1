package handler

import (
	"strings"

	"ridergate/internal/verification/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// LogRequest is the body of POST /verify/log sent by channel clients.
type LogRequest struct {
	JacketNumber  string           `json:"jacket_number"`
	VerifierPhone string           `json:"verifier_phone,omitempty"`
	Method        string           `json:"verification_method"`
	Location      *models.Location `json:"location_data,omitempty"`
}

func (r *LogRequest) Validate() error {
	r.VerifierPhone = strings.TrimSpace(r.VerifierPhone)
	r.Method = strings.TrimSpace(r.Method)
	if strings.TrimSpace(r.JacketNumber) == "" {
		return dErrors.New(dErrors.CodeValidation, "jacket_number is required")
	}
	if r.VerifierPhone != "" && !domain.IsValidPhone(r.VerifierPhone) {
		return dErrors.New(dErrors.CodeValidation, "verifier_phone must be a valid Nigerian mobile number")
	}
	if _, err := models.ParseMethod(r.Method); err != nil {
		return err
	}
	return nil
}

// Response is the verification envelope. Every logical outcome is a 200.
type Response struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message,omitempty"`
	Data           *models.Projection `json:"data,omitempty"`
	Error          *FailureBody       `json:"error,omitempty"`
	VerificationID string             `json:"verification_id,omitempty"`
	Timestamp      string             `json:"timestamp"`
}

type FailureBody struct {
	Code    models.FailureCode `json:"code"`
	Message string             `json:"message"`
}
