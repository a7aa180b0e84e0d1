package jurisdiction

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/jurisdiction/models"
	"ridergate/internal/jurisdiction/store"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

type countingStore struct {
	*store.InMemoryStore
	finds atomic.Int32
	err   error
}

func (c *countingStore) FindByID(ctx context.Context, id domain.JurisdictionID) (*models.Jurisdiction, error) {
	c.finds.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.InMemoryStore.FindByID(ctx, id)
}

func TestDirectoryResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves seeded code", func(t *testing.T) {
		dir := NewDirectory(store.NewInMemoryStore())
		code, err := dir.Code(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "ABN", code)

		j, err := dir.Resolve(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, "Yewa South", j.Name)
	})

	t.Run("unknown id is invalid jurisdiction", func(t *testing.T) {
		dir := NewDirectory(store.NewInMemoryStore())
		_, err := dir.Resolve(ctx, 999)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidJurisdiction))

		_, err = dir.Resolve(ctx, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidJurisdiction))
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		dir := NewDirectory(&countingStore{InMemoryStore: store.NewInMemoryStore(), err: errors.New("db down")})
		_, err := dir.Resolve(ctx, 1)
		assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
	})

	t.Run("hits are served from cache", func(t *testing.T) {
		cs := &countingStore{InMemoryStore: store.NewInMemoryStore()}
		dir := NewDirectory(cs)

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := dir.Resolve(ctx, 3)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		_, err := dir.Resolve(ctx, 3)
		require.NoError(t, err)

		assert.LessOrEqual(t, cs.finds.Load(), int32(20))
		before := cs.finds.Load()
		_, _ = dir.Resolve(ctx, 3)
		assert.Equal(t, before, cs.finds.Load(), "cached lookups must not reach the store")
	})
}

func TestDirectoryList(t *testing.T) {
	dir := NewDirectory(store.NewInMemoryStore())
	all, err := dir.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 20)
	assert.Equal(t, "Abeokuta North", all[0].Name)
	for _, j := range all {
		assert.True(t, models.IsValidCode(j.Code), j.Code)
	}
}
