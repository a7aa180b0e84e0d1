package main

import (
	"context"
	"database/sql"
	"time"

	incidentservice "ridergate/internal/incident/service"
	incidentstore "ridergate/internal/incident/store"
	jacketservice "ridergate/internal/jacket/service"
	jacketstore "ridergate/internal/jacket/store"
	"ridergate/internal/jurisdiction"
	jurisdictionstore "ridergate/internal/jurisdiction/store"
	paymentstore "ridergate/internal/payment/store"
	ridermodels "ridergate/internal/rider/models"
	riderservice "ridergate/internal/rider/service"
	riderstore "ridergate/internal/rider/store"
	smsservice "ridergate/internal/sms/service"
	smsstore "ridergate/internal/sms/store"
	statsservice "ridergate/internal/stats/service"
	statsstore "ridergate/internal/stats/store"
	verificationservice "ridergate/internal/verification/service"
	verificationstore "ridergate/internal/verification/store"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	auditmemory "ridergate/pkg/platform/audit/store/memory"
	auditpg "ridergate/pkg/platform/audit/store/postgres"
	"ridergate/pkg/platform/tx"
)

type riderBackend interface {
	riderservice.Store
	CountByJurisdiction(ctx context.Context, id domain.JurisdictionID) (int, error)
	FindByJacketNumber(ctx context.Context, jacketNumber string) (*ridermodels.Rider, error)
}

type jacketBackend interface {
	jacketservice.Store
	statsservice.JacketCounter
}

type paymentBackend interface {
	jacketservice.PaymentChecker
	riderservice.PaymentLister
}

// backend is the storage set every service is built on.
type backend struct {
	jurisdictions jurisdiction.Store
	riders        riderBackend
	attempts      verificationservice.AttemptStore
	incidents     incidentservice.Store
	jackets       jacketBackend
	payments      paymentBackend
	sms           smsservice.Store
	stats         statsservice.Source
	audit         audit.Store
	runner        tx.Runner
}

func postgresBackend(db *sql.DB, txTimeout time.Duration) *backend {
	return &backend{
		jurisdictions: jurisdictionstore.NewPostgres(db),
		riders:        riderstore.NewPostgres(db),
		attempts:      verificationstore.NewPostgres(db),
		incidents:     incidentstore.NewPostgres(db),
		jackets:       jacketstore.NewPostgres(db),
		payments:      paymentstore.NewPostgres(db),
		sms:           smsstore.NewPostgres(db),
		stats:         statsstore.NewPostgres(db),
		audit:         auditpg.New(db),
		runner:        tx.NewPostgresRunner(db, txTimeout),
	}
}

func memoryBackend() *backend {
	jurisdictions := jurisdictionstore.NewInMemoryStore()
	riders := riderstore.NewInMemoryStore().WithJurisdictionLookup(func(id domain.JurisdictionID) (string, string) {
		j, err := jurisdictions.FindByID(context.Background(), id)
		if err != nil {
			return "", ""
		}
		return j.Name, j.Code
	})
	attempts := verificationstore.NewInMemoryStore()
	incidents := incidentstore.NewInMemoryStore()
	return &backend{
		jurisdictions: jurisdictions,
		riders:        riders,
		attempts:      attempts,
		incidents:     incidents,
		jackets:       jacketstore.NewInMemoryStore(),
		payments:      paymentstore.NewInMemoryStore(),
		sms:           smsstore.NewInMemoryStore(),
		stats:         statsstore.NewInMemoryStore(attempts, incidents, riders),
		audit:         auditmemory.NewInMemoryStore(),
		runner:        tx.NewMutexRunner(),
	}
}
