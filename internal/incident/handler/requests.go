package handler

import (
	"strings"
	"unicode/utf8"

	"ridergate/internal/incident/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

type ReportRequest struct {
	JacketNumber  string `json:"jacket_number,omitempty"`
	ReporterName  string `json:"reporter_name"`
	ReporterPhone string `json:"reporter_phone"`
	IncidentType  string `json:"incident_type"`
	Description   string `json:"description"`
	Location      string `json:"location,omitempty"`
	Severity      string `json:"severity,omitempty"`
}

func (r *ReportRequest) Validate() error {
	r.JacketNumber = strings.ToUpper(strings.TrimSpace(r.JacketNumber))
	r.ReporterName = strings.TrimSpace(r.ReporterName)
	r.ReporterPhone = strings.TrimSpace(r.ReporterPhone)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)

	if r.JacketNumber != "" && !domain.IsWellFormedJacketNumber(r.JacketNumber) {
		return dErrors.New(dErrors.CodeValidation, "jacket_number must look like OG-XXX-00000")
	}
	if r.ReporterName == "" || utf8.RuneCountInString(r.ReporterName) > models.MaxReporterNameLength {
		return dErrors.New(dErrors.CodeValidation, "reporter_name is required and at most 200 characters")
	}
	if !domain.IsValidPhone(r.ReporterPhone) {
		return dErrors.New(dErrors.CodeValidation, "reporter_phone must be a valid Nigerian mobile number")
	}
	if !models.Type(r.IncidentType).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid incident_type")
	}
	if r.Description == "" || utf8.RuneCountInString(r.Description) > models.MaxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description is required and at most 1000 characters")
	}
	if utf8.RuneCountInString(r.Location) > models.MaxLocationLength {
		return dErrors.New(dErrors.CodeValidation, "location must be at most 500 characters")
	}
	if r.Severity != "" && !models.Severity(r.Severity).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "severity must be low, medium, high or critical")
	}
	return nil
}

func (r *ReportRequest) toReport() models.Report {
	return models.Report{
		JacketNumber:  r.JacketNumber,
		ReporterName:  r.ReporterName,
		ReporterPhone: r.ReporterPhone,
		Type:          models.Type(r.IncidentType),
		Description:   r.Description,
		Location:      r.Location,
		Severity:      models.Severity(r.Severity),
	}
}

type UpdateRequest struct {
	Status          *string `json:"status,omitempty"`
	AssignedTo      *string `json:"assigned_to,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
	Severity        *string `json:"severity,omitempty"`

	changes models.Changes
}

func (r *UpdateRequest) Validate() error {
	var c models.Changes
	if r.Status != nil {
		st := models.Status(strings.TrimSpace(*r.Status))
		if !st.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid status")
		}
		c.Status = &st
	}
	if r.AssignedTo != nil {
		staff, err := domain.ParseStaffID(strings.TrimSpace(*r.AssignedTo))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "assigned_to must be a staff id")
		}
		c.AssignedTo = &staff
	}
	if r.ResolutionNotes != nil {
		if utf8.RuneCountInString(*r.ResolutionNotes) > models.MaxNotesLength {
			return dErrors.New(dErrors.CodeValidation, "resolution_notes must be at most 1000 characters")
		}
		c.ResolutionNotes = r.ResolutionNotes
	}
	if r.Severity != nil {
		sev := models.Severity(strings.TrimSpace(*r.Severity))
		if !sev.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid severity")
		}
		c.Severity = &sev
	}
	if c.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	r.changes = c
	return nil
}
