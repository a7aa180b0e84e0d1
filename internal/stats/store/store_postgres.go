package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ridergate/internal/stats/models"
	"ridergate/pkg/domain"
	txcontext "ridergate/pkg/platform/tx"
)

// PostgresStore aggregates directly over the verifications and incidents
// tables. Jurisdiction filters go through the referenced rider.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const (
	fromVerifications = ` FROM verifications v LEFT JOIN riders r ON r.id = v.rider_id`
	fromIncidents     = ` FROM incidents i LEFT JOIN riders r ON r.id = i.rider_id`
)

func (s *PostgresStore) VerificationsByOutcome(ctx context.Context, w models.Window) (map[string]int, error) {
	where, args := buildWhere("v", w)
	return s.countBy(ctx, `SELECT v.result, COUNT(*)`+fromVerifications+where+` GROUP BY v.result`, args)
}

func (s *PostgresStore) VerificationsByMethod(ctx context.Context, w models.Window) (map[string]int, error) {
	where, args := buildWhere("v", w)
	return s.countBy(ctx, `SELECT v.verification_method, COUNT(*)`+fromVerifications+where+` GROUP BY v.verification_method`, args)
}

func (s *PostgresStore) VerificationsByHour(ctx context.Context, w models.Window) ([]models.HourCount, error) {
	where, args := buildWhere("v", w)
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT EXTRACT(HOUR FROM v.created_at)::int AS hour, COUNT(*)`+fromVerifications+where+
			` GROUP BY hour ORDER BY hour`, args...)
	if err != nil {
		return nil, fmt.Errorf("count verifications by hour: %w", err)
	}
	defer rows.Close()

	out := []models.HourCount{}
	for rows.Next() {
		var hc models.HourCount
		if err := rows.Scan(&hc.Hour, &hc.Count); err != nil {
			return nil, fmt.Errorf("scan hour count: %w", err)
		}
		out = append(out, hc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) TopVerifiedRiders(ctx context.Context, w models.Window, limit int) ([]models.RiderCount, error) {
	where, args := buildWhere("v", w)
	args = append(args, limit)
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT r.id, r.jacket_number, r.first_name, r.last_name, COUNT(v.id) AS verifications
		FROM verifications v JOIN riders r ON r.id = v.rider_id`+where+`
		GROUP BY r.id, r.jacket_number, r.first_name, r.last_name
		ORDER BY verifications DESC, r.jacket_number
		LIMIT $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("top verified riders: %w", err)
	}
	defer rows.Close()

	out := []models.RiderCount{}
	for rows.Next() {
		var (
			id uuid.UUID
			rc models.RiderCount
		)
		if err := rows.Scan(&id, &rc.JacketNumber, &rc.FirstName, &rc.LastName, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan rider count: %w", err)
		}
		rc.RiderID = domain.RiderID(id)
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) IncidentCounts(ctx context.Context, w models.Window, dim models.IncidentDimension) (map[string]int, error) {
	col, err := incidentColumn(dim)
	if err != nil {
		return nil, err
	}
	where, args := buildWhere("i", w)
	return s.countBy(ctx, `SELECT `+col+`, COUNT(*)`+fromIncidents+where+` GROUP BY `+col, args)
}

func incidentColumn(dim models.IncidentDimension) (string, error) {
	switch dim {
	case models.ByStatus, models.BySeverity, models.ByType:
		return "i." + pq.QuoteIdentifier(string(dim)), nil
	default:
		return "", fmt.Errorf("unsupported incident dimension %q", dim)
	}
}

func (s *PostgresStore) countBy(ctx context.Context, query string, args []any) (map[string]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			key   sql.NullString
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key.String] += count
	}
	return out, rows.Err()
}

// buildWhere bounds alias.created_at by the window and narrows to the rider's
// jurisdiction when one is set.
func buildWhere(alias string, w models.Window) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !w.From.IsZero() {
		clauses = append(clauses, alias+".created_at >= "+next(w.From))
	}
	if !w.To.IsZero() {
		clauses = append(clauses, alias+".created_at < "+next(w.To))
	}
	if !w.Jurisdiction.IsZero() {
		clauses = append(clauses, "r.jurisdiction_id = "+next(int(w.Jurisdiction)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
