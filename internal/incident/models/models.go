package models

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"ridergate/pkg/domain"
)

type Type string

const (
	TypeMisconduct Type = "misconduct"
	TypeAccident   Type = "accident"
	TypeTheft      Type = "theft"
	TypeFraud      Type = "fraud"
	TypeComplaint  Type = "complaint"
	TypeLostJacket Type = "lost_jacket"
	TypeOther      Type = "other"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeMisconduct, TypeAccident, TypeTheft, TypeFraud, TypeComplaint, TypeLostJacket, TypeOther:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
	StatusEscalated     Status = "escalated"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusClosed, StatusEscalated:
		return true
	}
	return false
}

// IsTerminal reports whether reaching s stamps resolved_at.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

const (
	MaxReporterNameLength = 200
	MaxDescriptionLength  = 1000
	MaxLocationLength     = 500
	MaxNotesLength        = 1000
)

// Incident is a field report. RiderID is a lookup reference only; removing
// the rider does not remove the incident.
type Incident struct {
	ID               domain.IncidentID     `json:"id"`
	ReferenceNumber  string                `json:"reference_number"`
	JacketNumber     string                `json:"jacket_number,omitempty"`
	RiderID          *domain.RiderID       `json:"rider_id,omitempty"`
	RiderName        string                `json:"rider_name,omitempty"`
	JurisdictionID   domain.JurisdictionID `json:"lga_id,omitempty"`
	JurisdictionName string                `json:"lga_name,omitempty"`
	ReporterName     string                `json:"reporter_name"`
	ReporterPhone    string                `json:"reporter_phone"`
	Type             Type                  `json:"incident_type"`
	Description      string                `json:"description"`
	Location         string                `json:"location,omitempty"`
	Severity         Severity              `json:"severity"`
	Status           Status                `json:"status"`
	AssignedTo       *domain.StaffID       `json:"assigned_to,omitempty"`
	ResolutionNotes  string                `json:"resolution_notes,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ResolvedAt       *time.Time            `json:"resolved_at,omitempty"`
}

// Report is a public incident submission.
type Report struct {
	JacketNumber  string
	ReporterName  string
	ReporterPhone string
	Type          Type
	Description   string
	Location      string
	Severity      Severity
}

// Changes carries the staff-editable fields. Nil means unchanged.
type Changes struct {
	Status          *Status
	AssignedTo      *domain.StaffID
	ResolutionNotes *string
	Severity        *Severity
}

func (c Changes) IsEmpty() bool {
	return c == Changes{}
}

// Apply mutates inc and stamps ResolvedAt the first time it reaches a
// terminal status.
func (c Changes) Apply(inc *Incident, now time.Time) {
	if c.Status != nil {
		inc.Status = *c.Status
		if inc.Status.IsTerminal() && inc.ResolvedAt == nil {
			t := now
			inc.ResolvedAt = &t
		}
	}
	if c.AssignedTo != nil {
		id := *c.AssignedTo
		inc.AssignedTo = &id
	}
	if c.ResolutionNotes != nil {
		inc.ResolutionNotes = strings.TrimSpace(*c.ResolutionNotes)
	}
	if c.Severity != nil {
		inc.Severity = *c.Severity
	}
	inc.UpdatedAt = now
}

type ListFilter struct {
	Status       Status
	Severity     Severity
	Jurisdiction domain.JurisdictionID
	AssignedTo   *domain.StaffID
	Dates        domain.DateRange
}

const referenceSuffixLen = 5

// NewReferenceNumber renders INC-<unix millis>-<5 base36 chars>.
func NewReferenceNumber(now time.Time) string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var b strings.Builder
	for range referenceSuffixLen {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return fmt.Sprintf("INC-%s-%s", strconv.FormatInt(now.UnixMilli(), 10), b.String())
}
