package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ridergate/internal/jacket/models"
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

func (s *PostgresStore) Create(ctx context.Context, j *models.Jacket) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO jackets (
			id, jacket_number, rider_id, production_batch_id, payment_reference,
			jurisdiction_id, status, notes, rider_confirmation, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(j.ID), j.JacketNumber, uuid.UUID(j.RiderID), nullBatch(j.BatchID), j.PaymentReference,
		int(j.JurisdictionID), string(j.Status), nullString(j.Notes), j.RiderConfirmation, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return fmt.Errorf("insert jacket: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert jacket: %w", err)
	}
	return nil
}

const selectJacket = `
	SELECT k.id, k.jacket_number, k.rider_id, COALESCE(r.first_name || ' ' || r.last_name, ''),
	       k.production_batch_id, k.payment_reference, k.jurisdiction_id, k.status, k.notes,
	       k.distributed_by, k.distribution_date, k.rider_confirmation, k.created_at, k.updated_at
	FROM jackets k
	LEFT JOIN riders r ON r.id = k.rider_id
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.JacketID) (*models.Jacket, error) {
	j, err := scanJacket(s.execer(ctx).QueryRowContext(ctx, selectJacket+` WHERE k.id = $1`, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find jacket: %w", err)
	}
	return j, nil
}

// Update writes the lifecycle columns.
func (s *PostgresStore) Update(ctx context.Context, j *models.Jacket) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE jackets SET
			status = $2, notes = $3, production_batch_id = $4, distributed_by = $5,
			distribution_date = $6, rider_confirmation = $7, updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(j.ID), string(j.Status), nullString(j.Notes), nullBatch(j.BatchID), nullStaff(j.DistributedBy),
		j.DistributionDate, j.RiderConfirmation, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update jacket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update jacket: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Jacket, int, error) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		clauses = append(clauses, "k.status = "+next(string(filter.Status)))
	}
	if !filter.Jurisdiction.IsZero() {
		clauses = append(clauses, "k.jurisdiction_id = "+next(int(filter.Jurisdiction)))
	}
	if filter.BatchID != nil {
		clauses = append(clauses, "k.production_batch_id = "+next(uuid.UUID(*filter.BatchID)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM jackets k`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jackets: %w", err)
	}
	args = append(args, limit, offset)
	list, err := s.query(ctx, selectJacket+where+
		fmt.Sprintf(` ORDER BY k.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *PostgresStore) ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Jacket, error) {
	return s.query(ctx, selectJacket+` WHERE k.rider_id = $1 ORDER BY k.created_at DESC`, uuid.UUID(rider))
}

func (s *PostgresStore) ListByBatch(ctx context.Context, batch domain.BatchID) ([]*models.Jacket, error) {
	return s.query(ctx, selectJacket+` WHERE k.production_batch_id = $1 ORDER BY k.created_at DESC`, uuid.UUID(batch))
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Jacket, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jackets: %w", err)
	}
	defer rows.Close()

	out := []*models.Jacket{}
	for rows.Next() {
		j, err := scanJacket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan jacket: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jackets: %w", err)
	}
	return out, nil
}

// CountByStatus counts jackets per status. A zero jurisdiction counts all.
func (s *PostgresStore) CountByStatus(ctx context.Context, jurisdiction domain.JurisdictionID) (map[models.Status]int, error) {
	query := `SELECT status, COUNT(*) FROM jackets`
	var args []any
	if !jurisdiction.IsZero() {
		query += ` WHERE jurisdiction_id = $1`
		args = append(args, int(jurisdiction))
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("count jackets by status: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan jacket count: %w", err)
		}
		out[models.Status(status)] = n
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateBatch(ctx context.Context, b *models.Batch) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO production_batches (
			id, batch_number, jurisdiction_id, quantity, cost_per_unit, total_cost,
			production_start_date, notes, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(b.ID), b.BatchNumber, int(b.JurisdictionID), b.Quantity, b.CostPerUnit, b.TotalCost,
		b.ProductionStartDate, nullString(b.Notes), nullStaff(&b.CreatedBy), b.CreatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return fmt.Errorf("insert batch: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	var (
		b            models.Batch
		batchID      uuid.UUID
		jurisdiction int
		jName, notes sql.NullString
		start        sql.NullTime
		createdBy    uuid.NullUUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT b.id, b.batch_number, b.jurisdiction_id, j.name, b.quantity, b.cost_per_unit,
		       b.total_cost, b.production_start_date, b.notes, b.created_by, b.created_at
		FROM production_batches b
		LEFT JOIN jurisdictions j ON j.id = b.jurisdiction_id
		WHERE b.id = $1
	`, uuid.UUID(id)).Scan(
		&batchID, &b.BatchNumber, &jurisdiction, &jName, &b.Quantity, &b.CostPerUnit,
		&b.TotalCost, &start, &notes, &createdBy, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find batch: %w", err)
	}
	b.ID = domain.BatchID(batchID)
	b.JurisdictionID = domain.JurisdictionID(jurisdiction)
	b.JurisdictionName = jName.String
	b.Notes = notes.String
	if start.Valid {
		b.ProductionStartDate = start.Time
	}
	if createdBy.Valid {
		b.CreatedBy = domain.StaffID(createdBy.UUID)
	}
	return &b, nil
}

func (s *PostgresStore) CountBatchesInYear(ctx context.Context, year int) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM production_batches WHERE EXTRACT(YEAR FROM created_at) = $1`, year,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJacket(row rowScanner) (*models.Jacket, error) {
	var (
		j                models.Jacket
		id, rider        uuid.UUID
		batch, staff     uuid.NullUUID
		jurisdiction     int
		status           string
		notes            sql.NullString
		distributionDate sql.NullTime
	)
	err := row.Scan(
		&id, &j.JacketNumber, &rider, &j.RiderName,
		&batch, &j.PaymentReference, &jurisdiction, &status, &notes,
		&staff, &distributionDate, &j.RiderConfirmation, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.ID = domain.JacketID(id)
	j.RiderID = domain.RiderID(rider)
	j.JurisdictionID = domain.JurisdictionID(jurisdiction)
	j.Status = models.Status(status)
	j.Notes = notes.String
	if batch.Valid {
		b := domain.BatchID(batch.UUID)
		j.BatchID = &b
	}
	if staff.Valid {
		st := domain.StaffID(staff.UUID)
		j.DistributedBy = &st
	}
	if distributionDate.Valid {
		t := distributionDate.Time
		j.DistributionDate = &t
	}
	return &j, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBatch(id *domain.BatchID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}

func nullStaff(id *domain.StaffID) uuid.NullUUID {
	if id == nil || id.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
