package handler

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"ridergate/internal/rider/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

const dateLayout = "2006-01-02"

type RegisterRequest struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email,omitempty"`
	JurisdictionID        int    `json:"lga_id"`
	VehicleType           string `json:"vehicle_type"`
	VehiclePlate          string `json:"vehicle_plate,omitempty"`
	Address               string `json:"address,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
	ExpiryDate            string `json:"expiry_date,omitempty"`

	expiry *time.Time
}

func (r *RegisterRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.VehiclePlate = strings.ToUpper(strings.TrimSpace(r.VehiclePlate))
	r.Address = strings.TrimSpace(r.Address)
	r.EmergencyContactName = strings.TrimSpace(r.EmergencyContactName)
	r.EmergencyContactPhone = strings.TrimSpace(r.EmergencyContactPhone)

	if err := validateName("first_name", r.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", r.LastName); err != nil {
		return err
	}
	if !domain.IsValidPhone(r.Phone) {
		return dErrors.New(dErrors.CodeValidation, "phone must be a valid Nigerian mobile number")
	}
	if r.JurisdictionID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "lga_id is required")
	}
	if !models.VehicleType(r.VehicleType).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "vehicle_type must be motorcycle or tricycle")
	}
	if err := validateOptional(r.Email, r.VehiclePlate, r.Address, r.EmergencyContactName, r.EmergencyContactPhone); err != nil {
		return err
	}
	if r.ExpiryDate != "" {
		t, err := time.Parse(dateLayout, r.ExpiryDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "expiry_date must be YYYY-MM-DD")
		}
		r.expiry = &t
	}
	return nil
}

func (r *RegisterRequest) toRegistration() models.Registration {
	return models.Registration{
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Phone:                 r.Phone,
		Email:                 r.Email,
		Jurisdiction:          domain.JurisdictionID(r.JurisdictionID),
		VehicleType:           models.VehicleType(r.VehicleType),
		VehiclePlate:          r.VehiclePlate,
		Address:               r.Address,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
		ExpiryDate:            r.expiry,
	}
}

// UpdateRequest accepts any subset of the mutable fields. An empty body is
// allowed and returns the current record.
type UpdateRequest struct {
	FirstName             *string `json:"first_name,omitempty"`
	LastName              *string `json:"last_name,omitempty"`
	Phone                 *string `json:"phone,omitempty"`
	Email                 *string `json:"email,omitempty"`
	VehicleType           *string `json:"vehicle_type,omitempty"`
	VehiclePlate          *string `json:"vehicle_plate,omitempty"`
	Address               *string `json:"address,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
	Status                *string `json:"status,omitempty"`

	patch models.Patch
}

func (r *UpdateRequest) Validate() error {
	p := models.Patch{
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Phone:                 r.Phone,
		Email:                 r.Email,
		VehiclePlate:          r.VehiclePlate,
		Address:               r.Address,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
	}
	if r.FirstName != nil {
		if err := validateName("first_name", strings.TrimSpace(*r.FirstName)); err != nil {
			return err
		}
	}
	if r.LastName != nil {
		if err := validateName("last_name", strings.TrimSpace(*r.LastName)); err != nil {
			return err
		}
	}
	if r.Phone != nil && !domain.IsValidPhone(strings.TrimSpace(*r.Phone)) {
		return dErrors.New(dErrors.CodeValidation, "phone must be a valid Nigerian mobile number")
	}
	if err := validateOptional(deref(r.Email), deref(r.VehiclePlate), deref(r.Address),
		deref(r.EmergencyContactName), deref(r.EmergencyContactPhone)); err != nil {
		return err
	}
	if r.VehicleType != nil {
		vt := models.VehicleType(strings.TrimSpace(*r.VehicleType))
		if !vt.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "vehicle_type must be motorcycle or tricycle")
		}
		p.VehicleType = &vt
	}
	if r.Status != nil {
		st := models.Status(strings.TrimSpace(*r.Status))
		if !st.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid status")
		}
		p.Status = &st
	}
	r.patch = p
	return nil
}

func validateName(field, v string) error {
	n := utf8.RuneCountInString(v)
	if n < models.MinNameLength || n > models.MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, field+" must be 2-50 characters")
	}
	return nil
}

func validateOptional(email, plate, address, contactName, contactPhone string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(plate)) > models.MaxPlateLength {
		return dErrors.New(dErrors.CodeValidation, "vehicle_plate must be at most 20 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(address)) > models.MaxAddressLength {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 500 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(contactName)) > models.MaxContactNameLength {
		return dErrors.New(dErrors.CodeValidation, "emergency_contact_name must be at most 100 characters")
	}
	if contactPhone = strings.TrimSpace(contactPhone); contactPhone != "" && !domain.IsValidPhone(contactPhone) {
		return dErrors.New(dErrors.CodeValidation, "emergency_contact_phone must be a valid Nigerian mobile number")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
