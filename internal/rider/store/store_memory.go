package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"ridergate/internal/rider/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

// InMemoryStore keeps riders in maps. Pair it with tx.MutexRunner so that
// count-then-insert during registration is serialized.
type InMemoryStore struct {
	mu      sync.RWMutex
	riders  map[domain.RiderID]*models.Rider
	byPhone map[string]domain.RiderID
	byJN    map[string]domain.RiderID
	// lookup fills JurisdictionName/Code on reads when set.
	lookup func(domain.JurisdictionID) (name, code string)
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		riders:  make(map[domain.RiderID]*models.Rider),
		byPhone: make(map[string]domain.RiderID),
		byJN:    make(map[string]domain.RiderID),
	}
}

// WithJurisdictionLookup sets the read-side join used for name and code.
func (s *InMemoryStore) WithJurisdictionLookup(fn func(domain.JurisdictionID) (name, code string)) *InMemoryStore {
	s.lookup = fn
	return s
}

// LockJurisdiction is a no-op; the mutex runner already serializes.
func (s *InMemoryStore) LockJurisdiction(context.Context, domain.JurisdictionID) error {
	return nil
}

func (s *InMemoryStore) CountByJurisdiction(_ context.Context, id domain.JurisdictionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.riders {
		if r.JurisdictionID == id {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Create(_ context.Context, r *models.Rider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byJN[r.JacketNumber]; ok {
		return ErrDuplicateJacketNumber
	}
	if _, ok := s.byPhone[r.Phone]; ok {
		return ErrDuplicatePhone
	}
	cp := *r
	s.riders[r.ID] = &cp
	s.byPhone[r.Phone] = r.ID
	s.byJN[r.JacketNumber] = r.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RiderID) (*models.Rider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.riders[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.project(r), nil
}

func (s *InMemoryStore) FindByJacketNumber(_ context.Context, jacketNumber string) (*models.Rider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byJN[jacketNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.project(s.riders[id]), nil
}

func (s *InMemoryStore) Update(_ context.Context, r *models.Rider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.riders[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.IsRevoked() && !r.IsRevoked() {
		return ErrRiderRevoked
	}
	if owner, taken := s.byPhone[r.Phone]; taken && owner != r.ID {
		return ErrDuplicatePhone
	}
	delete(s.byPhone, existing.Phone)
	cp := *r
	// Jacket number and jurisdiction are fixed at registration.
	cp.JacketNumber = existing.JacketNumber
	cp.JurisdictionID = existing.JurisdictionID
	s.riders[r.ID] = &cp
	s.byPhone[cp.Phone] = r.ID
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter, limit, offset int) ([]*models.Rider, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []*models.Rider
	for _, r := range s.riders {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status) {
			continue
		}
		if !filter.Jurisdiction.IsZero() && r.JurisdictionID != filter.Jurisdiction {
			continue
		}
		if filter.VehicleType != "" && r.VehicleType != filter.VehicleType {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RegistrationDate.After(matched[j].RegistrationDate)
	})

	total := len(matched)
	if offset >= total {
		return []*models.Rider{}, total, nil
	}
	end := min(offset+limit, total)
	out := make([]*models.Rider, 0, end-offset)
	for _, r := range matched[offset:end] {
		out = append(out, s.project(r))
	}
	return out, total, nil
}

func (s *InMemoryStore) project(r *models.Rider) *models.Rider {
	cp := *r
	if s.lookup != nil {
		cp.JurisdictionName, cp.JurisdictionCode = s.lookup(r.JurisdictionID)
	}
	return &cp
}

func matchesSearch(r *models.Rider, q string) bool {
	return strings.Contains(strings.ToLower(r.FirstName), q) ||
		strings.Contains(strings.ToLower(r.LastName), q) ||
		strings.Contains(strings.ToLower(r.Phone), q) ||
		strings.Contains(strings.ToLower(r.JacketNumber), q)
}
