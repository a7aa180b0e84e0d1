// Package allocator mints jurisdiction-scoped jacket numbers.
//
// The next sequence is the count of riders already registered in the
// jurisdiction plus one. Next must run inside the transaction that inserts
// the rider, after the jurisdiction has been locked, so that two
// registrations cannot observe the same count. The unique constraint on
// jacket_number remains the backstop if that discipline is broken.
package allocator

import (
	"context"

	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// CodeResolver maps a jurisdiction to its three-letter code.
type CodeResolver interface {
	Code(ctx context.Context, id domain.JurisdictionID) (string, error)
}

// Counter counts riders ever registered in a jurisdiction, revoked included.
type Counter interface {
	CountByJurisdiction(ctx context.Context, id domain.JurisdictionID) (int, error)
}

type Allocator struct {
	codes   CodeResolver
	counter Counter
}

func New(codes CodeResolver, counter Counter) *Allocator {
	return &Allocator{codes: codes, counter: counter}
}

// Next returns OG-<CODE>-<NNNNN> for the jurisdiction.
// Unknown jurisdictions fail with CodeInvalidJurisdiction.
func (a *Allocator) Next(ctx context.Context, jurisdiction domain.JurisdictionID) (string, error) {
	code, err := a.codes.Code(ctx, jurisdiction)
	if err != nil {
		return "", err
	}
	n, err := a.counter.CountByJurisdiction(ctx, jurisdiction)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to count riders")
	}
	seq := n + 1
	if seq > domain.MaxJacketSequence {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "jacket number sequence exhausted for jurisdiction")
	}
	return domain.FormatJacketNumber(code, seq), nil
}
