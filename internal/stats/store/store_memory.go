package store

import (
	"context"
	"fmt"
	"sort"

	incidentmodels "ridergate/internal/incident/models"
	ridermodels "ridergate/internal/rider/models"
	"ridergate/internal/stats/models"
	verificationmodels "ridergate/internal/verification/models"
	"ridergate/pkg/domain"
)

type AttemptSource interface {
	Snapshot() []verificationmodels.Attempt
}

type IncidentSource interface {
	Snapshot() []incidentmodels.Incident
}

type RiderReader interface {
	FindByID(ctx context.Context, id domain.RiderID) (*ridermodels.Rider, error)
}

// InMemoryStore aggregates over the in-memory verification and incident
// stores. Attempts are attributed to a jurisdiction through their rider;
// attempts without a resolvable rider only count in unscoped windows.
type InMemoryStore struct {
	attempts  AttemptSource
	incidents IncidentSource
	riders    RiderReader
}

func NewInMemoryStore(attempts AttemptSource, incidents IncidentSource, riders RiderReader) *InMemoryStore {
	return &InMemoryStore{attempts: attempts, incidents: incidents, riders: riders}
}

func (s *InMemoryStore) VerificationsByOutcome(ctx context.Context, w models.Window) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range s.attemptsIn(ctx, w) {
		out[string(a.Outcome)]++
	}
	return out, nil
}

func (s *InMemoryStore) VerificationsByMethod(ctx context.Context, w models.Window) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range s.attemptsIn(ctx, w) {
		out[string(a.Method)]++
	}
	return out, nil
}

func (s *InMemoryStore) VerificationsByHour(ctx context.Context, w models.Window) ([]models.HourCount, error) {
	counts := map[int]int{}
	for _, a := range s.attemptsIn(ctx, w) {
		counts[a.CreatedAt.Hour()]++
	}
	out := make([]models.HourCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, models.HourCount{Hour: h, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

func (s *InMemoryStore) TopVerifiedRiders(ctx context.Context, w models.Window, limit int) ([]models.RiderCount, error) {
	byRider := map[domain.RiderID]*models.RiderCount{}
	for _, a := range s.attemptsIn(ctx, w) {
		if a.RiderID == nil {
			continue
		}
		rc, ok := byRider[*a.RiderID]
		if !ok {
			r, err := s.riders.FindByID(ctx, *a.RiderID)
			if err != nil {
				continue
			}
			rc = &models.RiderCount{
				RiderID:      r.ID,
				JacketNumber: r.JacketNumber,
				FirstName:    r.FirstName,
				LastName:     r.LastName,
			}
			byRider[*a.RiderID] = rc
		}
		rc.Count++
	}
	out := make([]models.RiderCount, 0, len(byRider))
	for _, rc := range byRider {
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].JacketNumber < out[j].JacketNumber
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) IncidentCounts(_ context.Context, w models.Window, dim models.IncidentDimension) (map[string]int, error) {
	key := func(inc *incidentmodels.Incident) string {
		switch dim {
		case models.ByStatus:
			return string(inc.Status)
		case models.BySeverity:
			return string(inc.Severity)
		default:
			return string(inc.Type)
		}
	}
	switch dim {
	case models.ByStatus, models.BySeverity, models.ByType:
	default:
		return nil, fmt.Errorf("unsupported incident dimension %q", dim)
	}

	out := map[string]int{}
	for _, inc := range s.incidents.Snapshot() {
		if !w.Contains(inc.CreatedAt) {
			continue
		}
		if !w.Jurisdiction.IsZero() && inc.JurisdictionID != w.Jurisdiction {
			continue
		}
		out[key(&inc)]++
	}
	return out, nil
}

func (s *InMemoryStore) attemptsIn(ctx context.Context, w models.Window) []verificationmodels.Attempt {
	var out []verificationmodels.Attempt
	for _, a := range s.attempts.Snapshot() {
		if !w.Contains(a.CreatedAt) {
			continue
		}
		if !w.Jurisdiction.IsZero() && s.jurisdictionOf(ctx, a) != w.Jurisdiction {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *InMemoryStore) jurisdictionOf(ctx context.Context, a verificationmodels.Attempt) domain.JurisdictionID {
	if a.RiderID == nil {
		return 0
	}
	r, err := s.riders.FindByID(ctx, *a.RiderID)
	if err != nil {
		return 0
	}
	return r.JurisdictionID
}
