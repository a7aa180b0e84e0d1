package store

import (
	"fmt"

	"ridergate/pkg/platform/sentinel"
)

// Uniqueness violations. Both wrap sentinel.ErrConflict.
var (
	ErrDuplicatePhone        = fmt.Errorf("phone already registered: %w", sentinel.ErrConflict)
	ErrDuplicateJacketNumber = fmt.Errorf("jacket number already issued: %w", sentinel.ErrConflict)
)

// ErrRiderRevoked rejects a write that would move a stored revoked rider to
// any other status.
var ErrRiderRevoked = fmt.Errorf("rider is revoked: %w", sentinel.ErrInvalidState)
