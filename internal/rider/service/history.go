package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	incidentmodels "ridergate/internal/incident/models"
	jacketmodels "ridergate/internal/jacket/models"
	paymentmodels "ridergate/internal/payment/models"
	"ridergate/internal/rider/models"
	verificationmodels "ridergate/internal/verification/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// History is the composite read of a rider and everything that refers to it.
type History struct {
	Rider         *models.Rider                 `json:"rider"`
	Payments      []*paymentmodels.Payment      `json:"payments"`
	Jackets       []*jacketmodels.Jacket        `json:"jackets"`
	Incidents     []*incidentmodels.Incident    `json:"incidents"`
	Verifications []*verificationmodels.Attempt `json:"verifications"`
}

// History loads the rider and its related records concurrently. Any failing
// source fails the whole read.
func (s *Service) History(ctx context.Context, id domain.RiderID) (*History, error) {
	ctx, span := s.tracer.Start(ctx, "rider.History")
	defer span.End()

	rider, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	h := &History{
		Rider:         rider,
		Payments:      []*paymentmodels.Payment{},
		Jackets:       []*jacketmodels.Jacket{},
		Incidents:     []*incidentmodels.Incident{},
		Verifications: []*verificationmodels.Attempt{},
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.payments != nil {
		g.Go(func() error {
			list, err := s.payments.ListByRider(gctx, id)
			if err == nil && list != nil {
				h.Payments = list
			}
			return err
		})
	}
	if s.jackets != nil {
		g.Go(func() error {
			list, err := s.jackets.ListByRider(gctx, id)
			if err == nil && list != nil {
				h.Jackets = list
			}
			return err
		})
	}
	if s.incidents != nil {
		g.Go(func() error {
			list, err := s.incidents.ListByRider(gctx, id)
			if err == nil && list != nil {
				h.Incidents = list
			}
			return err
		})
	}
	if s.verifications != nil {
		g.Go(func() error {
			list, err := s.verifications.RecentForRider(gctx, id, verificationHistoryLimit)
			if err == nil && list != nil {
				h.Verifications = list
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rider history")
	}
	return h, nil
}
