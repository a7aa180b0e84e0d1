package store

import (
	"context"
	"sort"
	"sync"

	"ridergate/internal/verification/models"
	"ridergate/pkg/domain"
)

// InMemoryStore is an append-only attempt log.
type InMemoryStore struct {
	mu       sync.RWMutex
	attempts []models.Attempt
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, a *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, *a)
	return nil
}

func (s *InMemoryStore) RecentForRider(_ context.Context, rider domain.RiderID, limit int) ([]*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Attempt{}
	for i := range s.attempts {
		a := s.attempts[i]
		if a.RiderID != nil && *a.RiderID == rider {
			out = append(out, &a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Snapshot returns a copy of every attempt in insertion order.
func (s *InMemoryStore) Snapshot() []models.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Attempt(nil), s.attempts...)
}
