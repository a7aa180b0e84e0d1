package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ridergate/internal/platform/postgres"
	"ridergate/internal/sms/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
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
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.Log) error {
	var rider uuid.NullUUID
	if entry.RiderID != nil {
		rider = uuid.NullUUID{UUID: uuid.UUID(*entry.RiderID), Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO sms_logs (
			id, phone, message, message_type, direction, status,
			gateway_response, cost, rider_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(entry.ID), entry.Phone, entry.Message, string(entry.Kind),
		string(entry.Direction), string(entry.Status),
		sql.NullString{String: entry.GatewayResponse, Valid: entry.GatewayResponse != ""},
		entry.Cost, rider, entry.CreatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert sms log: %w", err)
	}
	return nil
}

const selectLog = `
	SELECT l.id, l.phone, l.message, l.message_type, l.direction, l.status,
	       l.gateway_response, l.cost, l.rider_id, r.jacket_number,
	       r.first_name, r.last_name, l.created_at
	FROM sms_logs l
	LEFT JOIN riders r ON r.id = l.rider_id
`

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Log, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM sms_logs l`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sms logs: %w", err)
	}

	args = append(args, limit, offset)
	query := selectLog + where +
		fmt.Sprintf(` ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sms logs: %w", err)
	}
	defer rows.Close()

	out := []*models.Log{}
	for rows.Next() {
		entry, err := scanLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sms log: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list sms logs: %w", err)
	}
	return out, total, nil
}

func buildWhere(f models.ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Phone != "" {
		clauses = append(clauses, "l.phone = "+next(f.Phone))
	}
	if f.Kind != "" {
		clauses = append(clauses, "l.message_type = "+next(string(f.Kind)))
	}
	if f.Status != "" {
		clauses = append(clauses, "l.status = "+next(string(f.Status)))
	}
	if !f.Dates.IsZero() {
		from, to := f.Dates.Bounds(f.Dates.To, 0)
		clauses = append(clauses, "l.created_at >= "+next(from), "l.created_at < "+next(to))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*models.Log, error) {
	var (
		entry                     models.Log
		id                        uuid.UUID
		rider                     uuid.NullUUID
		response, jn, first, last sql.NullString
		kind, direction, status   string
	)
	err := row.Scan(
		&id, &entry.Phone, &entry.Message, &kind, &direction, &status,
		&response, &entry.Cost, &rider, &jn,
		&first, &last, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = domain.SMSLogID(id)
	entry.Kind = models.Kind(kind)
	entry.Direction = models.Direction(direction)
	entry.Status = models.Status(status)
	entry.GatewayResponse = response.String
	if rider.Valid {
		r := domain.RiderID(rider.UUID)
		entry.RiderID = &r
		entry.JacketNumber = jn.String
		entry.RiderName = strings.TrimSpace(first.String + " " + last.String)
	}
	return &entry, nil
}
