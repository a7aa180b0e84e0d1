package store

import (
	"context"
	"sort"
	"sync"

	"ridergate/internal/sms/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

// InMemoryStore keeps SMS logs in insertion order.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs []*models.Log
	ids  map[domain.SMSLogID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ids: make(map[domain.SMSLogID]struct{})}
}

func (s *InMemoryStore) Append(_ context.Context, entry *models.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[entry.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *entry
	s.logs = append(s.logs, &cp)
	s.ids[entry.ID] = struct{}{}
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter, limit, offset int) ([]*models.Log, int, error) {
	s.mu.RLock()
	matched := make([]*models.Log, 0)
	for _, entry := range s.logs {
		if matches(entry, filter) {
			cp := *entry
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= total {
		return []*models.Log{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func matches(entry *models.Log, f models.ListFilter) bool {
	if f.Phone != "" && entry.Phone != f.Phone {
		return false
	}
	if f.Kind != "" && entry.Kind != f.Kind {
		return false
	}
	if f.Status != "" && entry.Status != f.Status {
		return false
	}
	return f.Dates.Contains(entry.CreatedAt)
}
