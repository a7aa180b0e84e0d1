// Package models defines verification outcomes and the attempt log entry.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mssola/useragent"

	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// Outcome is the logical result of a verification. Every outcome is a
// successful response at the transport level.
type Outcome string

const (
	OutcomeValid         Outcome = "valid"
	OutcomeInvalidFormat Outcome = "invalid_format"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeInactive      Outcome = "inactive"
	OutcomeExpired       Outcome = "expired"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeValid, OutcomeInvalidFormat, OutcomeNotFound, OutcomeInactive, OutcomeExpired:
		return true
	}
	return false
}

// FailureCode is the machine-readable code returned for negative outcomes.
type FailureCode string

const (
	FailureInvalidFormat FailureCode = "INVALID_FORMAT"
	FailureNotFound      FailureCode = "RIDER_NOT_FOUND"
	FailureInactive      FailureCode = "RIDER_INACTIVE"
	FailureExpired       FailureCode = "JACKET_EXPIRED"
)

var failureCodes = map[Outcome]FailureCode{
	OutcomeInvalidFormat: FailureInvalidFormat,
	OutcomeNotFound:      FailureNotFound,
	OutcomeInactive:      FailureInactive,
	OutcomeExpired:       FailureExpired,
}

// FailureCode returns the code for a negative outcome, or "" for valid.
func (o Outcome) FailureCode() FailureCode {
	return failureCodes[o]
}

// Method is the channel a verification arrived through.
type Method string

const (
	MethodWeb       Method = "web"
	MethodSMS       Method = "sms"
	MethodMobileApp Method = "mobile_app"
	MethodAPI       Method = "api"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodWeb, MethodSMS, MethodMobileApp, MethodAPI:
		return m, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "method must be one of web, sms, mobile_app, api")
}

// MethodFromUserAgent guesses the channel when the client did not name one.
func MethodFromUserAgent(ua string) Method {
	if ua == "" {
		return MethodAPI
	}
	parsed := useragent.New(ua)
	switch {
	case parsed.Bot(), parsed.Mozilla() == "":
		return MethodAPI
	case parsed.Mobile():
		return MethodMobileApp
	default:
		return MethodWeb
	}
}

// Location is free-form location data attached by field clients.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// Attempt is one append-only verification log entry. JacketNumber is kept as
// typed, malformed or not.
type Attempt struct {
	ID            domain.AttemptID `json:"id"`
	JacketNumber  string           `json:"jacket_number"`
	RiderID       *domain.RiderID  `json:"rider_id,omitempty"`
	VerifierPhone string           `json:"verifier_phone,omitempty"`
	Method        Method           `json:"verification_method"`
	Location      *Location        `json:"location_data,omitempty"`
	UserAgent     string           `json:"user_agent,omitempty"`
	IPAddress     string           `json:"ip_address,omitempty"`
	Outcome       Outcome          `json:"result"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Byte caps for free-text attempt fields. Queried jacket numbers are kept as
// typed, so malformed input is bounded here rather than rejected.
const (
	MaxLoggedJacketNumber = 64
	MaxLoggedUserAgent    = 512
)

// Loggable returns s as valid UTF-8 without NUL bytes, cut to at most max
// bytes on a rune boundary.
func Loggable(s string, max int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\x00", "")
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Request is a verification as received from a channel.
type Request struct {
	JacketNumber  string
	VerifierPhone string
	Method        Method
	Location      *Location
	UserAgent     string
	IPAddress     string
}

// Projection is the privacy-masked view of a rider returned on success.
type Projection struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	JurisdictionName string    `json:"lga_name"`
	VehicleType      string    `json:"vehicle_type"`
	VehiclePlate     string    `json:"vehicle_plate,omitempty"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	Status           string    `json:"status"`
	RegistrationDate time.Time `json:"registration_date"`
}

// Result is the engine's answer. Rider is set only for OutcomeValid.
type Result struct {
	Outcome   Outcome
	Message   string
	Rider     *Projection
	AttemptID domain.AttemptID
	// RiderStatus is populated whenever the rider was found.
	RiderStatus string
}

func (r *Result) Success() bool {
	return r.Outcome == OutcomeValid
}
