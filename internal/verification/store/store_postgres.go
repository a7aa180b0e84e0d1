package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ridergate/internal/verification/models"
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
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, a *models.Attempt) error {
	var location any
	if a.Location != nil {
		raw, err := json.Marshal(a.Location)
		if err != nil {
			return fmt.Errorf("marshal location: %w", err)
		}
		location = raw
	}
	var rider uuid.NullUUID
	if a.RiderID != nil {
		rider = uuid.NullUUID{UUID: uuid.UUID(*a.RiderID), Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verifications (
			id, jacket_number, rider_id, verifier_phone, verification_method,
			location_data, user_agent, ip_address, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(a.ID), a.JacketNumber, rider, nullString(a.VerifierPhone), string(a.Method),
		location, nullString(a.UserAgent), nullString(a.IPAddress), string(a.Outcome), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentForRider(ctx context.Context, rider domain.RiderID, limit int) ([]*models.Attempt, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, jacket_number, rider_id, verifier_phone, verification_method,
		       location_data, user_agent, ip_address, result, created_at
		FROM verifications
		WHERE rider_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, uuid.UUID(rider), limit)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Attempt{}
	for rows.Next() {
		var (
			a               models.Attempt
			id              uuid.UUID
			riderID         uuid.NullUUID
			phone, ua, ip   sql.NullString
			method, outcome string
			location        []byte
		)
		if err := rows.Scan(&id, &a.JacketNumber, &riderID, &phone, &method,
			&location, &ua, &ip, &outcome, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		a.ID = domain.AttemptID(id)
		if riderID.Valid {
			r := domain.RiderID(riderID.UUID)
			a.RiderID = &r
		}
		a.VerifierPhone = phone.String
		a.Method = models.Method(method)
		a.UserAgent = ua.String
		a.IPAddress = ip.String
		a.Outcome = models.Outcome(outcome)
		if len(location) > 0 {
			var loc models.Location
			if err := json.Unmarshal(location, &loc); err == nil {
				a.Location = &loc
			}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
