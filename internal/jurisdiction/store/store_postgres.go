package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ridergate/internal/jurisdiction/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

// PostgresStore reads the jurisdictions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.JurisdictionID) (*models.Jurisdiction, error) {
	var j models.Jurisdiction
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM jurisdictions WHERE id = $1`, int(id),
	).Scan(&j.ID, &j.Name, &j.Code, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find jurisdiction: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Jurisdiction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, code, created_at FROM jurisdictions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	defer rows.Close()

	var out []models.Jurisdiction
	for rows.Next() {
		var j models.Jurisdiction
		if err := rows.Scan(&j.ID, &j.Name, &j.Code, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan jurisdiction: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jurisdictions: %w", err)
	}
	return out, nil
}

// Seed inserts OgunLGAs. Existing codes are left untouched so codes already
// printed on jackets never change. Returns the number of rows inserted.
func (s *PostgresStore) Seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, lga := range OgunLGAs {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO jurisdictions (name, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			lga.Name, lga.Code,
		)
		if err != nil {
			return inserted, fmt.Errorf("seed jurisdiction %s: %w", lga.Code, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	return inserted, nil
}
