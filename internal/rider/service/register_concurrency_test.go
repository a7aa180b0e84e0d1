package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/jurisdiction"
	jurisdictionstore "ridergate/internal/jurisdiction/store"
	"ridergate/internal/rider/allocator"
	"ridergate/internal/rider/models"
	riderstore "ridergate/internal/rider/store"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/tx"
	"ridergate/pkg/requestcontext"
)

func TestConcurrentRegistrationsGetDistinctSequentialNumbers(t *testing.T) {
	directory := jurisdiction.NewDirectory(jurisdictionstore.NewInMemoryStore())
	store := riderstore.NewInMemoryStore()
	svc := New(store, allocator.New(directory, store), directory, tx.NewMutexRunner())

	ctx := requestcontext.WithCaller(context.Background(), domain.Caller{
		StaffID: domain.StaffID(domain.NewRiderID()),
		Role:    domain.RoleFieldOfficer,
	})

	const n = 25
	numbers := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rider, err := svc.Register(ctx, models.Registration{
				FirstName:    "Rider",
				LastName:     fmt.Sprintf("Number%d", i),
				Phone:        fmt.Sprintf("+23481%08d", i),
				Jurisdiction: 5,
				VehicleType:  models.VehicleTricycle,
			})
			errs[i] = err
			if rider != nil {
				numbers[i] = rider.JacketNumber
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := range n {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "duplicate %s", numbers[i])
		seen[numbers[i]] = true
	}
	for seq := 1; seq <= n; seq++ {
		assert.True(t, seen[domain.FormatJacketNumber("IFO", seq)], "missing sequence %d", seq)
	}
}

func TestRegisterRejectsDuplicatePhoneWithRealStore(t *testing.T) {
	directory := jurisdiction.NewDirectory(jurisdictionstore.NewInMemoryStore())
	store := riderstore.NewInMemoryStore()
	svc := New(store, allocator.New(directory, store), directory, tx.NewMutexRunner())
	ctx := requestcontext.WithCaller(context.Background(), domain.Caller{
		StaffID: domain.StaffID(domain.NewRiderID()),
		Role:    domain.RoleAdmin,
	})

	first, err := svc.Register(ctx, registration())
	require.NoError(t, err)
	assert.Equal(t, "OG-ABN-00001", first.JacketNumber)

	_, err = svc.Register(ctx, registration())
	require.Error(t, err)

	n, err := store.CountByJurisdiction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed registration must not consume a sequence")
}
