package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ridergate/internal/payment/models"
	"ridergate/pkg/domain"
	txcontext "ridergate/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// IsCompleted reports whether reference names a completed payment made by rider.
func (s *PostgresStore) IsCompleted(ctx context.Context, reference string, rider domain.RiderID) (bool, error) {
	var one int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT 1 FROM payments WHERE reference = $1 AND rider_id = $2 AND status = $3`,
		reference, uuid.UUID(rider), string(models.StatusCompleted),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check payment: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Payment, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT reference, rider_id, amount, status, created_at
		FROM payments WHERE rider_id = $1 ORDER BY created_at DESC
	`, uuid.UUID(rider))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []*models.Payment{}
	for rows.Next() {
		var (
			p      models.Payment
			id     uuid.UUID
			status string
		)
		if err := rows.Scan(&p.Reference, &id, &p.Amount, &status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.RiderID = domain.RiderID(id)
		p.Status = models.Status(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}
