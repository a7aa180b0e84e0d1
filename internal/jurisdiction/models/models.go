package models

import (
	"regexp"
	"time"

	"ridergate/pkg/domain"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Jurisdiction is a local government area. Its code is printed into every
// jacket number issued under it and never changes once riders exist.
type Jurisdiction struct {
	ID        domain.JurisdictionID `json:"id"`
	Name      string                `json:"name"`
	Code      string                `json:"code"`
	CreatedAt time.Time             `json:"created_at"`
}

// IsValidCode reports whether code is three uppercase letters.
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}
