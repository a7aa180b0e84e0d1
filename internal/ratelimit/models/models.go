// Package models holds the rate limit vocabulary shared by stores and middleware.
package models

import (
	"strings"
	"time"
)

// Class names a group of public endpoints sharing one per-IP budget.
type Class string

const (
	ClassVerify         Class = "verify"
	ClassVerifyLog      Class = "verify_log"
	ClassIncidentReport Class = "incident_report"
	ClassSMSInbound     Class = "sms_inbound"
)

// Limit is a sliding window budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result describes one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the next request could be allowed.
	RetryAfter int
}

// Key builds the bucket key for class and client IP. Colons in the IP are
// escaped so an IPv6 address cannot spill into another segment.
func Key(class Class, ip string) string {
	return "rl:" + string(class) + ":" + sanitizeKeySegment(ip)
}

func sanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// RetryAfterSeconds rounds the time until resetAt up to whole seconds, never
// below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
