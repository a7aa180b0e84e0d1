package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert rider: %w", &pgconn.PgError{Code: "23505", ConstraintName: "riders_phone_key"})
	name, ok := UniqueViolation(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "riders_phone_key", name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}
