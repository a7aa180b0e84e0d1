// Package jurisdiction resolves LGA identifiers to their codes for jacket
// number allocation and caller scoping.
package jurisdiction

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"ridergate/internal/jurisdiction/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

// Store is the read side of the jurisdictions table.
type Store interface {
	FindByID(ctx context.Context, id domain.JurisdictionID) (*models.Jurisdiction, error)
	List(ctx context.Context) ([]models.Jurisdiction, error)
}

// Directory caches jurisdictions indefinitely. Rows are seeded once and codes
// are immutable, so entries never go stale; misses are not cached.
type Directory struct {
	store  Store
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[domain.JurisdictionID]models.Jurisdiction
	group singleflight.Group
}

type Option func(*Directory)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

func NewDirectory(store Store, opts ...Option) *Directory {
	d := &Directory{
		store:  store,
		logger: slog.Default(),
		cache:  make(map[domain.JurisdictionID]models.Jurisdiction),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve returns the jurisdiction for id, or CodeInvalidJurisdiction.
func (d *Directory) Resolve(ctx context.Context, id domain.JurisdictionID) (models.Jurisdiction, error) {
	if id.IsZero() {
		return models.Jurisdiction{}, dErrors.New(dErrors.CodeInvalidJurisdiction, "jurisdiction is required")
	}

	d.mu.RLock()
	j, ok := d.cache[id]
	d.mu.RUnlock()
	if ok {
		return j, nil
	}

	v, err, _ := d.group.Do(id.String(), func() (any, error) {
		found, err := d.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.cache[id] = *found
		d.mu.Unlock()
		return *found, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Jurisdiction{}, dErrors.New(dErrors.CodeInvalidJurisdiction, "unknown jurisdiction")
		}
		return models.Jurisdiction{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve jurisdiction")
	}
	return v.(models.Jurisdiction), nil
}

// Code is shorthand for Resolve(...).Code.
func (d *Directory) Code(ctx context.Context, id domain.JurisdictionID) (string, error) {
	j, err := d.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return j.Code, nil
}

// List returns every jurisdiction ordered by name and warms the cache.
func (d *Directory) List(ctx context.Context) ([]models.Jurisdiction, error) {
	all, err := d.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jurisdictions")
	}
	d.mu.Lock()
	for _, j := range all {
		d.cache[j.ID] = j
	}
	d.mu.Unlock()
	return all, nil
}
