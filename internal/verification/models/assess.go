package models

import "time"

// Assess decides the outcome for a rider that exists. Status is checked
// before expiry; expiry is strict, so a jacket expiring exactly now is valid.
func Assess(status string, expiresAt *time.Time, now time.Time) Outcome {
	if status != "active" {
		return OutcomeInactive
	}
	if expiresAt != nil && expiresAt.Before(now) {
		return OutcomeExpired
	}
	return OutcomeValid
}
