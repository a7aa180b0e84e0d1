package store

import (
	"context"
	"sort"
	"sync"

	"ridergate/internal/jacket/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	jackets map[domain.JacketID]*models.Jacket
	batches map[domain.BatchID]*models.Batch
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		jackets: make(map[domain.JacketID]*models.Jacket),
		batches: make(map[domain.BatchID]*models.Batch),
	}
}

func (s *InMemoryStore) Create(_ context.Context, j *models.Jacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jackets[j.ID]; ok {
		return sentinel.ErrConflict
	}
	if j.BatchID != nil {
		if _, ok := s.batches[*j.BatchID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	cp := *j
	s.jackets[j.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.JacketID) (*models.Jacket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jackets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, j *models.Jacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jackets[j.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *j
	s.jackets[j.ID] = &cp
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter, limit, offset int) ([]*models.Jacket, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.collect(func(j *models.Jacket) bool {
		if filter.Status != "" && j.Status != filter.Status {
			return false
		}
		if !filter.Jurisdiction.IsZero() && j.JurisdictionID != filter.Jurisdiction {
			return false
		}
		if filter.BatchID != nil && (j.BatchID == nil || *j.BatchID != *filter.BatchID) {
			return false
		}
		return true
	})
	total := len(matched)
	if offset >= total {
		return []*models.Jacket{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (s *InMemoryStore) ListByRider(_ context.Context, rider domain.RiderID) ([]*models.Jacket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(j *models.Jacket) bool { return j.RiderID == rider }), nil
}

func (s *InMemoryStore) ListByBatch(_ context.Context, batch domain.BatchID) ([]*models.Jacket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(j *models.Jacket) bool { return j.BatchID != nil && *j.BatchID == batch }), nil
}

// CountByStatus counts jackets per status. A zero jurisdiction counts all.
func (s *InMemoryStore) CountByStatus(_ context.Context, jurisdiction domain.JurisdictionID) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.Status]int)
	for _, j := range s.jackets {
		if jurisdiction.IsZero() || j.JurisdictionID == jurisdiction {
			out[j.Status]++
		}
	}
	return out, nil
}

// collect returns copies of matching jackets, newest first. Callers hold the lock.
func (s *InMemoryStore) collect(match func(*models.Jacket) bool) []*models.Jacket {
	out := []*models.Jacket{}
	for _, j := range s.jackets {
		if match(j) {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

func (s *InMemoryStore) CreateBatch(_ context.Context, b *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.batches {
		if existing.BatchNumber == b.BatchNumber {
			return sentinel.ErrConflict
		}
	}
	cp := *b
	cp.Jackets = nil
	s.batches[b.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindBatch(_ context.Context, id domain.BatchID) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// CountBatchesInYear counts batches created in the calendar year across all
// jurisdictions.
func (s *InMemoryStore) CountBatchesInYear(_ context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.batches {
		if b.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}
