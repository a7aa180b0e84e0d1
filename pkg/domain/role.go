package domain

import (
	"slices"

	dErrors "ridergate/pkg/domain-errors"
)

// Role is the staff role asserted by the caller identity token.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleAdmin          Role = "admin"
	RoleLGAAdmin       Role = "lga_admin"
	RoleFinanceOfficer Role = "finance_officer"
	RoleFieldOfficer   Role = "field_officer"
	RoleViewer         Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleSuperAdmin:     true,
	RoleAdmin:          true,
	RoleLGAAdmin:       true,
	RoleFinanceOfficer: true,
	RoleFieldOfficer:   true,
	RoleViewer:         true,
}

// ParseRole returns CodeInvalidInput for unknown roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool { return validRoles[r] }

// Caller is the authenticated staff identity attached to a request.
// Jurisdiction is only meaningful for jurisdiction-scoped roles.
type Caller struct {
	StaffID      StaffID
	Role         Role
	Jurisdiction JurisdictionID
}

// IsAuthenticated reports whether a caller identity was established.
func (c Caller) IsAuthenticated() bool {
	return !c.StaffID.IsNil() && c.Role.IsValid()
}

// HasRole reports whether the caller holds one of roles.
func (c Caller) HasRole(roles ...Role) bool {
	return slices.Contains(roles, c.Role)
}

// IsScoped reports whether the caller may only see one jurisdiction.
func (c Caller) IsScoped() bool {
	return c.Role == RoleLGAAdmin
}

// CanAccess reports whether the caller may act on records of jurisdiction j.
// A scoped caller without a jurisdiction can access nothing.
func (c Caller) CanAccess(j JurisdictionID) bool {
	if !c.IsScoped() {
		return true
	}
	return !c.Jurisdiction.IsZero() && c.Jurisdiction == j
}
