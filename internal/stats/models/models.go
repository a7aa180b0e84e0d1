// Package models defines the statistics reports and the window they cover.
package models

import (
	"time"

	"ridergate/pkg/domain"
)

// DefaultLookback applies when a report names no date range.
const DefaultLookback = 30 * 24 * time.Hour

// TopRidersLimit caps the most-verified riders list.
const TopRidersLimit = 10

// Window is a half-open [From, To) interval, optionally narrowed to one
// jurisdiction. A zero Jurisdiction covers all.
type Window struct {
	Jurisdiction domain.JurisdictionID
	From         time.Time
	To           time.Time
}

// Contains reports whether t falls inside the window's time bounds.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Scope is what callers ask for; the service turns it into a Window.
type Scope struct {
	Jurisdiction domain.JurisdictionID
	Dates        domain.DateRange
}

// WindowAt resolves the scope against now, falling back to DefaultLookback.
func (s Scope) WindowAt(now time.Time) Window {
	from, to := s.Dates.Bounds(now, DefaultLookback)
	return Window{Jurisdiction: s.Jurisdiction, From: from, To: to}
}

// SuccessRate is successful/total, and 0 when there were no verifications.
func SuccessRate(successful, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(successful) / float64(total)
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type RiderCount struct {
	RiderID      domain.RiderID `json:"rider_id"`
	JacketNumber string         `json:"jacket_number"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Count        int            `json:"verification_count"`
}

type VerificationStats struct {
	Total       int            `json:"total_verifications"`
	Successful  int            `json:"successful_verifications"`
	SuccessRate float64        `json:"success_rate"`
	ByMethod    map[string]int `json:"verifications_by_method"`
	ByHour      []HourCount    `json:"verifications_by_hour"`
	ByOutcome   map[string]int `json:"verifications_by_result"`
	TopRiders   []RiderCount   `json:"top_verified_riders"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
}

// IncidentDimension is a column incidents can be grouped by.
type IncidentDimension string

const (
	ByStatus   IncidentDimension = "status"
	BySeverity IncidentDimension = "severity"
	ByType     IncidentDimension = "incident_type"
)

type IncidentStats struct {
	Total      int            `json:"total_incidents"`
	ByStatus   map[string]int `json:"incidents_by_status"`
	BySeverity map[string]int `json:"incidents_by_severity"`
	ByType     map[string]int `json:"incidents_by_type"`
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
}

type JacketStats struct {
	Total    int            `json:"total_jackets"`
	ByStatus map[string]int `json:"jackets_by_status"`
}
