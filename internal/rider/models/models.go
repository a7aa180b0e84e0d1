package models

import (
	"strings"
	"time"
	"unicode/utf8"

	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// Status is the rider lifecycle state. Revoked is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusRevoked   Status = "revoked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusRevoked:
		return true
	}
	return false
}

type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleTricycle   VehicleType = "tricycle"
)

func (v VehicleType) IsValid() bool {
	return v == VehicleMotorcycle || v == VehicleTricycle
}

// Field limits shared by request validation and the constructor.
const (
	MinNameLength        = 2
	MaxNameLength        = 50
	MaxPlateLength       = 20
	MaxAddressLength     = 500
	MaxContactNameLength = 100
)

// Rider is a registered motorcycle or tricycle operator. JacketNumber is
// assigned once at registration and never changes.
type Rider struct {
	ID                    domain.RiderID        `json:"id"`
	JacketNumber          string                `json:"jacket_number"`
	FirstName             string                `json:"first_name"`
	LastName              string                `json:"last_name"`
	Phone                 string                `json:"phone"`
	Email                 string                `json:"email,omitempty"`
	JurisdictionID        domain.JurisdictionID `json:"lga_id"`
	JurisdictionName      string                `json:"lga_name,omitempty"`
	JurisdictionCode      string                `json:"lga_code,omitempty"`
	VehicleType           VehicleType           `json:"vehicle_type"`
	VehiclePlate          string                `json:"vehicle_plate,omitempty"`
	Address               string                `json:"address,omitempty"`
	EmergencyContactName  string                `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string                `json:"emergency_contact_phone,omitempty"`
	Status                Status                `json:"status"`
	RegistrationDate      time.Time             `json:"registration_date"`
	ExpiryDate            *time.Time            `json:"expiry_date,omitempty"`
	CreatedBy             domain.StaffID        `json:"created_by"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

func (r *Rider) FullName() string {
	return r.FirstName + " " + r.LastName
}

func (r *Rider) IsRevoked() bool {
	return r.Status == StatusRevoked
}

// Validate checks the invariants every persisted rider satisfies.
// Violations are CodeInvariantViolation; callers at the edge translate them.
func (r *Rider) Validate() error {
	if r.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "rider id is required")
	}
	if !domain.IsWellFormedJacketNumber(r.JacketNumber) {
		return dErrors.New(dErrors.CodeInvariantViolation, "jacket number is malformed")
	}
	if err := validateName("first_name", r.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", r.LastName); err != nil {
		return err
	}
	if !domain.IsValidPhone(r.Phone) {
		return dErrors.New(dErrors.CodeInvariantViolation, "phone must be a valid Nigerian mobile number")
	}
	if r.JurisdictionID.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "jurisdiction is required")
	}
	if !r.VehicleType.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "vehicle_type must be motorcycle or tricycle")
	}
	if !r.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid rider status")
	}
	return nil
}

func validateName(field, v string) error {
	n := utf8.RuneCountInString(v)
	if n < MinNameLength || n > MaxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" must be 2-50 characters")
	}
	return nil
}

// Registration is the input to Register, already validated at the edge.
type Registration struct {
	FirstName             string
	LastName              string
	Phone                 string
	Email                 string
	Jurisdiction          domain.JurisdictionID
	VehicleType           VehicleType
	VehiclePlate          string
	Address               string
	EmergencyContactName  string
	EmergencyContactPhone string
	ExpiryDate            *time.Time
}

// Patch carries the mutable rider fields. Nil fields are left unchanged.
type Patch struct {
	FirstName             *string
	LastName              *string
	Phone                 *string
	Email                 *string
	VehicleType           *VehicleType
	VehiclePlate          *string
	Address               *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Status                *Status
}

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply copies the set fields onto r. A revoked rider may not change status.
func (p Patch) Apply(r *Rider) error {
	if p.Status != nil && r.IsRevoked() && *p.Status != StatusRevoked {
		return dErrors.New(dErrors.CodeInvalidState, "revoked riders cannot be reactivated")
	}
	set(&r.FirstName, p.FirstName)
	set(&r.LastName, p.LastName)
	set(&r.Phone, p.Phone)
	set(&r.Email, p.Email)
	set(&r.VehiclePlate, p.VehiclePlate)
	set(&r.Address, p.Address)
	set(&r.EmergencyContactName, p.EmergencyContactName)
	set(&r.EmergencyContactPhone, p.EmergencyContactPhone)
	if p.VehicleType != nil {
		r.VehicleType = *p.VehicleType
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Statuses     []Status
	Jurisdiction domain.JurisdictionID
	VehicleType  VehicleType
	Search       string
}
