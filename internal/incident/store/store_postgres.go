package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ridergate/internal/incident/models"
	"ridergate/internal/platform/postgres"
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

func (s *PostgresStore) Create(ctx context.Context, inc *models.Incident) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO incidents (
			id, reference_number, jacket_number, rider_id, reporter_name,
			reporter_phone, incident_type, description, location, severity,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		uuid.UUID(inc.ID), inc.ReferenceNumber, nullString(inc.JacketNumber), nullRider(inc.RiderID),
		inc.ReporterName, inc.ReporterPhone, string(inc.Type), inc.Description,
		nullString(inc.Location), string(inc.Severity), string(inc.Status), inc.CreatedAt, inc.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

const selectIncident = `
	SELECT i.id, i.reference_number, i.jacket_number, i.rider_id,
	       r.first_name, r.last_name, r.jurisdiction_id, j.name,
	       i.reporter_name, i.reporter_phone, i.incident_type, i.description,
	       i.location, i.severity, i.status, i.assigned_to, i.resolution_notes,
	       i.created_at, i.updated_at, i.resolved_at
	FROM incidents i
	LEFT JOIN riders r ON r.id = i.rider_id
	LEFT JOIN jurisdictions j ON j.id = r.jurisdiction_id
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.IncidentID) (*models.Incident, error) {
	inc, err := scanIncident(s.execer(ctx).QueryRowContext(ctx, selectIncident+` WHERE i.id = $1`, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return inc, nil
}

func (s *PostgresStore) Update(ctx context.Context, inc *models.Incident) error {
	var assigned uuid.NullUUID
	if inc.AssignedTo != nil {
		assigned = uuid.NullUUID{UUID: uuid.UUID(*inc.AssignedTo), Valid: true}
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE incidents SET
			status = $2, assigned_to = $3, resolution_notes = $4, severity = $5,
			updated_at = $6, resolved_at = $7
		WHERE id = $1
	`,
		uuid.UUID(inc.ID), string(inc.Status), assigned, nullString(inc.ResolutionNotes),
		string(inc.Severity), inc.UpdatedAt, inc.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Incident, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM incidents i LEFT JOIN riders r ON r.id = i.rider_id` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	args = append(args, limit, offset)
	query := selectIncident + where +
		fmt.Sprintf(` ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	list, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *PostgresStore) ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Incident, error) {
	return s.query(ctx, selectIncident+` WHERE i.rider_id = $1 ORDER BY i.created_at DESC`, uuid.UUID(rider))
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Incident, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := []*models.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
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
	if f.Status != "" {
		clauses = append(clauses, "i.status = "+next(string(f.Status)))
	}
	if f.Severity != "" {
		clauses = append(clauses, "i.severity = "+next(string(f.Severity)))
	}
	if !f.Jurisdiction.IsZero() {
		clauses = append(clauses, "r.jurisdiction_id = "+next(int(f.Jurisdiction)))
	}
	if f.AssignedTo != nil {
		clauses = append(clauses, "i.assigned_to = "+next(uuid.UUID(*f.AssignedTo)))
	}
	if !f.Dates.IsZero() {
		from, to := f.Dates.Bounds(f.Dates.To, 0)
		clauses = append(clauses, "i.created_at >= "+next(from), "i.created_at < "+next(to))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	var (
		inc                        models.Incident
		id                         uuid.UUID
		rider, assigned            uuid.NullUUID
		jacket, first, last, jName sql.NullString
		location, notes            sql.NullString
		jurisdiction               sql.NullInt64
		incType, severity, status  string
	)
	err := row.Scan(
		&id, &inc.ReferenceNumber, &jacket, &rider,
		&first, &last, &jurisdiction, &jName,
		&inc.ReporterName, &inc.ReporterPhone, &incType, &inc.Description,
		&location, &severity, &status, &assigned, &notes,
		&inc.CreatedAt, &inc.UpdatedAt, &inc.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	inc.ID = domain.IncidentID(id)
	inc.JacketNumber = jacket.String
	if rider.Valid {
		r := domain.RiderID(rider.UUID)
		inc.RiderID = &r
		inc.RiderName = strings.TrimSpace(first.String + " " + last.String)
	}
	if jurisdiction.Valid {
		inc.JurisdictionID = domain.JurisdictionID(jurisdiction.Int64)
	}
	inc.JurisdictionName = jName.String
	inc.Type = models.Type(incType)
	inc.Location = location.String
	inc.Severity = models.Severity(severity)
	inc.Status = models.Status(status)
	if assigned.Valid {
		a := domain.StaffID(assigned.UUID)
		inc.AssignedTo = &a
	}
	inc.ResolutionNotes = notes.String
	return &inc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRider(id *domain.RiderID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
