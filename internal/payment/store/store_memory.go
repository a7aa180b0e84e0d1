package store

import (
	"context"
	"sort"
	"sync"

	"ridergate/internal/payment/models"
	"ridergate/pkg/domain"
)

// InMemoryStore backs tests and the memory profile. Put seeds payments the
// payment service would otherwise write.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments map[string]*models.Payment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{payments: make(map[string]*models.Payment)}
}

func (s *InMemoryStore) Put(p *models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payments[p.Reference] = &cp
}

func (s *InMemoryStore) IsCompleted(_ context.Context, reference string, rider domain.RiderID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[reference]
	if !ok {
		return false, nil
	}
	return p.IsCompletedFor(rider), nil
}

func (s *InMemoryStore) ListByRider(_ context.Context, rider domain.RiderID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Payment{}
	for _, p := range s.payments {
		if p.RiderID == rider {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
