package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridergate/internal/jurisdiction/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.JurisdictionID]models.Jurisdiction
}

// NewInMemoryStore returns a store preloaded with OgunLGAs, IDs starting at 1.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{items: make(map[domain.JurisdictionID]models.Jurisdiction)}
	now := time.Now()
	for i, lga := range OgunLGAs {
		id := domain.JurisdictionID(i + 1)
		s.items[id] = models.Jurisdiction{ID: id, Name: lga.Name, Code: lga.Code, CreatedAt: now}
	}
	return s
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.JurisdictionID) (*models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &j, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Jurisdiction, 0, len(s.items))
	for _, j := range s.items {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}
