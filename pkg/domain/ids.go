// Package domain holds the identifiers and value types shared by every module.
//
// Typed IDs stop a RiderID from being passed where an IncidentID is expected.
// Construct them with the Parse functions at trust boundaries; direct
// conversion from uuid.UUID is reserved for code that mints new IDs.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "ridergate/pkg/domain-errors"
)

type (
	RiderID    uuid.UUID
	StaffID    uuid.UUID
	IncidentID uuid.UUID
	AttemptID  uuid.UUID
	JacketID   uuid.UUID
	BatchID    uuid.UUID
	SMSLogID   uuid.UUID
)

func (id RiderID) String() string    { return uuid.UUID(id).String() }
func (id StaffID) String() string    { return uuid.UUID(id).String() }
func (id IncidentID) String() string { return uuid.UUID(id).String() }
func (id AttemptID) String() string  { return uuid.UUID(id).String() }
func (id JacketID) String() string   { return uuid.UUID(id).String() }
func (id BatchID) String() string    { return uuid.UUID(id).String() }
func (id SMSLogID) String() string   { return uuid.UUID(id).String() }

func (id RiderID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AttemptID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id StaffID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id IncidentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id JacketID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id BatchID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func NewRiderID() RiderID       { return RiderID(uuid.New()) }
func NewIncidentID() IncidentID { return IncidentID(uuid.New()) }
func NewAttemptID() AttemptID   { return AttemptID(uuid.New()) }
func NewJacketID() JacketID     { return JacketID(uuid.New()) }
func NewBatchID() BatchID       { return BatchID(uuid.New()) }
func NewSMSLogID() SMSLogID     { return SMSLogID(uuid.New()) }

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return parsed, nil
}

func ParseRiderID(s string) (RiderID, error) {
	u, err := parseUUID("rider id", s)
	return RiderID(u), err
}

func ParseStaffID(s string) (StaffID, error) {
	u, err := parseUUID("staff id", s)
	return StaffID(u), err
}

func ParseIncidentID(s string) (IncidentID, error) {
	u, err := parseUUID("incident id", s)
	return IncidentID(u), err
}

func ParseJacketID(s string) (JacketID, error) {
	u, err := parseUUID("jacket id", s)
	return JacketID(u), err
}

func ParseBatchID(s string) (BatchID, error) {
	u, err := parseUUID("batch id", s)
	return BatchID(u), err
}

// JurisdictionID identifies an LGA. IDs are small positive integers assigned
// when the directory is seeded.
type JurisdictionID int

func (id JurisdictionID) String() string { return strconv.Itoa(int(id)) }

// IsZero reports an unset jurisdiction.
func (id JurisdictionID) IsZero() bool { return id == 0 }

// ParseJurisdictionID accepts a positive decimal integer.
func ParseJurisdictionID(s string) (JurisdictionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "jurisdiction id is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "jurisdiction id must be a positive integer")
	}
	return JurisdictionID(n), nil
}
