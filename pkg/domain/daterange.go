package domain

import (
	"strings"
	"time"

	dErrors "ridergate/pkg/domain-errors"
)

// DateRange is an inclusive day range. The zero value means unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (d DateRange) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// Contains reports whether t falls on or between the range's days.
func (d DateRange) Contains(t time.Time) bool {
	if d.IsZero() {
		return true
	}
	return !t.Before(d.From) && t.Before(d.To.AddDate(0, 0, 1))
}

// ParseDateRange parses "YYYY-MM-DD,YYYY-MM-DD". Empty input is unbounded.
func ParseDateRange(s string) (DateRange, error) {
	if s == "" {
		return DateRange{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "date_range must be YYYY-MM-DD,YYYY-MM-DD")
	}
	from, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[0]))
	if err != nil {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "date_range must be YYYY-MM-DD,YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, strings.TrimSpace(parts[1]))
	if err != nil {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "date_range must be YYYY-MM-DD,YYYY-MM-DD")
	}
	if to.Before(from) {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "date_range end precedes start")
	}
	return DateRange{From: from, To: to}, nil
}

// Bounds returns the half-open [from, to) interval the range covers. A zero
// range falls back to the lookback window ending at now.
func (d DateRange) Bounds(now time.Time, lookback time.Duration) (time.Time, time.Time) {
	if d.IsZero() {
		return now.Add(-lookback), now
	}
	return d.From, d.To.AddDate(0, 0, 1)
}
