package store

import (
	"context"
	"sort"
	"sync"

	"ridergate/internal/incident/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	incidents map[domain.IncidentID]*models.Incident
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{incidents: make(map[domain.IncidentID]*models.Incident)}
}

func (s *InMemoryStore) Create(_ context.Context, inc *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.incidents {
		if existing.ReferenceNumber == inc.ReferenceNumber {
			return sentinel.ErrConflict
		}
	}
	cp := *inc
	s.incidents[inc.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.IncidentID) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *inc
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, inc *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[inc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *inc
	s.incidents[inc.ID] = &cp
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter, limit, offset int) ([]*models.Incident, int, error) {
	s.mu.RLock()
	matched := make([]*models.Incident, 0)
	for _, inc := range s.incidents {
		if matches(inc, filter) {
			cp := *inc
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	total := len(matched)
	if offset >= total {
		return []*models.Incident{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (s *InMemoryStore) ListByRider(_ context.Context, rider domain.RiderID) ([]*models.Incident, error) {
	s.mu.RLock()
	out := []*models.Incident{}
	for _, inc := range s.incidents {
		if inc.RiderID != nil && *inc.RiderID == rider {
			cp := *inc
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

// Snapshot returns copies of every incident.
func (s *InMemoryStore) Snapshot() []models.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, *inc)
	}
	return out
}

func matches(inc *models.Incident, f models.ListFilter) bool {
	if f.Status != "" && inc.Status != f.Status {
		return false
	}
	if f.Severity != "" && inc.Severity != f.Severity {
		return false
	}
	if !f.Jurisdiction.IsZero() && inc.JurisdictionID != f.Jurisdiction {
		return false
	}
	if f.AssignedTo != nil && (inc.AssignedTo == nil || *inc.AssignedTo != *f.AssignedTo) {
		return false
	}
	return f.Dates.Contains(inc.CreatedAt)
}

func sortNewestFirst(list []*models.Incident) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
