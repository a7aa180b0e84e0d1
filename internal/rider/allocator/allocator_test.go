package allocator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/jurisdiction"
	"ridergate/internal/jurisdiction/store"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

type fixedCounter struct {
	counts map[domain.JurisdictionID]int
	err    error
}

func (f fixedCounter) CountByJurisdiction(_ context.Context, id domain.JurisdictionID) (int, error) {
	return f.counts[id], f.err
}

func TestNext(t *testing.T) {
	ctx := context.Background()
	dir := jurisdiction.NewDirectory(store.NewInMemoryStore())

	tests := []struct {
		name     string
		id       domain.JurisdictionID
		existing int
		expected string
	}{
		{"first rider", 1, 0, "OG-ABN-00001"},
		{"N existing yields N+1", 18, 41, "OG-SAG-00042"},
		{"pads to five digits", 20, 9998, "OG-YES-09999"},
		{"last sequence", 3, 99998, "OG-ADO-99999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(dir, fixedCounter{counts: map[domain.JurisdictionID]int{tt.id: tt.existing}})
			got, err := a.Next(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.True(t, domain.IsWellFormedJacketNumber(got))
		})
	}

	t.Run("unknown jurisdiction", func(t *testing.T) {
		_, err := New(dir, fixedCounter{}).Next(ctx, 404)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidJurisdiction))
	})

	t.Run("sequence exhausted", func(t *testing.T) {
		a := New(dir, fixedCounter{counts: map[domain.JurisdictionID]int{1: 99999}})
		_, err := a.Next(ctx, 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("count failure is internal", func(t *testing.T) {
		_, err := New(dir, fixedCounter{err: errors.New("db down")}).Next(ctx, 1)
		assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}
