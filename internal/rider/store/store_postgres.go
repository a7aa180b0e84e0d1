package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ridergate/internal/platform/postgres"
	"ridergate/internal/rider/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
	txcontext "ridergate/pkg/platform/tx"
)

// allocationLockClass namespaces the advisory locks taken for jacket
// number allocation; the second key is the jurisdiction ID.
const allocationLockClass = 7301

// PostgresStore persists riders in PostgreSQL.
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

// LockJurisdiction takes a transaction-scoped advisory lock. It must run
// inside a transaction; outside one the lock would be released immediately.
func (s *PostgresStore) LockJurisdiction(ctx context.Context, id domain.JurisdictionID) error {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return errors.New("jurisdiction lock requires a transaction")
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, allocationLockClass, int(id)); err != nil {
		return fmt.Errorf("lock jurisdiction: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountByJurisdiction(ctx context.Context, id domain.JurisdictionID) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM riders WHERE jurisdiction_id = $1`, int(id),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count riders: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Rider) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO riders (
			id, jacket_number, first_name, last_name, phone, email,
			jurisdiction_id, vehicle_type, vehicle_plate, address,
			emergency_contact_name, emergency_contact_phone, status,
			registration_date, expiry_date, created_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		uuid.UUID(r.ID), r.JacketNumber, r.FirstName, r.LastName, r.Phone, nullString(r.Email),
		int(r.JurisdictionID), string(r.VehicleType), nullString(r.VehiclePlate), nullString(r.Address),
		nullString(r.EmergencyContactName), nullString(r.EmergencyContactPhone), string(r.Status),
		r.RegistrationDate, r.ExpiryDate, nullStaff(r.CreatedBy), r.UpdatedAt,
	)
	if err != nil {
		return translateUnique(err, "insert rider")
	}
	return nil
}

const selectRider = `
	SELECT r.id, r.jacket_number, r.first_name, r.last_name, r.phone, r.email,
	       r.jurisdiction_id, j.name, j.code, r.vehicle_type, r.vehicle_plate, r.address,
	       r.emergency_contact_name, r.emergency_contact_phone, r.status,
	       r.registration_date, r.expiry_date, r.created_by, r.updated_at
	FROM riders r
	LEFT JOIN jurisdictions j ON j.id = r.jurisdiction_id
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RiderID) (*models.Rider, error) {
	return s.findOne(ctx, selectRider+` WHERE r.id = $1`, uuid.UUID(id))
}

func (s *PostgresStore) FindByJacketNumber(ctx context.Context, jacketNumber string) (*models.Rider, error) {
	return s.findOne(ctx, selectRider+` WHERE r.jacket_number = $1`, jacketNumber)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Rider, error) {
	r, err := scanRider(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find rider: %w", err)
	}
	return r, nil
}

// Update writes the mutable columns. Jacket number and jurisdiction are
// never updated. The status guard is evaluated against the stored row, so a
// write prepared from a stale read cannot reactivate a revoked rider.
func (s *PostgresStore) Update(ctx context.Context, r *models.Rider) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE riders SET
			first_name = $2, last_name = $3, phone = $4, email = $5,
			vehicle_type = $6, vehicle_plate = $7, address = $8,
			emergency_contact_name = $9, emergency_contact_phone = $10,
			status = $11, updated_at = $12
		WHERE id = $1 AND (status <> 'revoked' OR $11 = 'revoked')
	`,
		uuid.UUID(r.ID), r.FirstName, r.LastName, r.Phone, nullString(r.Email),
		string(r.VehicleType), nullString(r.VehiclePlate), nullString(r.Address),
		nullString(r.EmergencyContactName), nullString(r.EmergencyContactPhone),
		string(r.Status), r.UpdatedAt,
	)
	if err != nil {
		return translateUnique(err, "update rider")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rider: %w", err)
	}
	if n == 0 {
		return s.missOrRevoked(ctx, r.ID)
	}
	return nil
}

// missOrRevoked explains an UPDATE that matched no row.
func (s *PostgresStore) missOrRevoked(ctx context.Context, id domain.RiderID) error {
	var status string
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT status FROM riders WHERE id = $1`, uuid.UUID(id)).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return sentinel.ErrNotFound
	case err != nil:
		return fmt.Errorf("update rider: %w", err)
	case models.Status(status) == models.StatusRevoked:
		return ErrRiderRevoked
	}
	return fmt.Errorf("update rider: no row matched: %w", sentinel.ErrConflict)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Rider, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM riders r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count riders: %w", err)
	}

	args = append(args, limit, offset)
	query := selectRider + where +
		fmt.Sprintf(` ORDER BY r.registration_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list riders: %w", err)
	}
	defer rows.Close()

	out := []*models.Rider{}
	for rows.Next() {
		r, err := scanRider(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan rider: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate riders: %w", err)
	}
	return out, total, nil
}

func buildWhere(filter models.ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		clauses = append(clauses, "r.status = ANY("+next(pq.Array(statuses))+")")
	}
	if !filter.Jurisdiction.IsZero() {
		clauses = append(clauses, "r.jurisdiction_id = "+next(int(filter.Jurisdiction)))
	}
	if filter.VehicleType != "" {
		clauses = append(clauses, "r.vehicle_type = "+next(string(filter.VehicleType)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := next("%" + q + "%")
		clauses = append(clauses, "(r.first_name ILIKE "+p+" OR r.last_name ILIKE "+p+
			" OR r.phone ILIKE "+p+" OR r.jacket_number ILIKE "+p+")")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRider(row rowScanner) (*models.Rider, error) {
	var (
		r                                   models.Rider
		id                                  uuid.UUID
		email, plate, address, ecName, ecPh sql.NullString
		jName, jCode                        sql.NullString
		vehicle, status                     string
		expiry                              sql.NullTime
		createdBy                           uuid.NullUUID
		jurisdiction                        int
	)
	err := row.Scan(
		&id, &r.JacketNumber, &r.FirstName, &r.LastName, &r.Phone, &email,
		&jurisdiction, &jName, &jCode, &vehicle, &plate, &address,
		&ecName, &ecPh, &status,
		&r.RegistrationDate, &expiry, &createdBy, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = domain.RiderID(id)
	r.Email = email.String
	r.JurisdictionID = domain.JurisdictionID(jurisdiction)
	r.JurisdictionName = jName.String
	r.JurisdictionCode = jCode.String
	r.VehicleType = models.VehicleType(vehicle)
	r.VehiclePlate = plate.String
	r.Address = address.String
	r.EmergencyContactName = ecName.String
	r.EmergencyContactPhone = ecPh.String
	r.Status = models.Status(status)
	if expiry.Valid {
		t := expiry.Time
		r.ExpiryDate = &t
	}
	if createdBy.Valid {
		r.CreatedBy = domain.StaffID(createdBy.UUID)
	}
	return &r, nil
}

func translateUnique(err error, op string) error {
	if constraint, ok := postgres.UniqueViolation(err); ok {
		switch constraint {
		case "riders_phone_key":
			return ErrDuplicatePhone
		case "riders_jacket_number_key":
			return ErrDuplicateJacketNumber
		}
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStaff(id domain.StaffID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(id), Valid: !id.IsNil()}
}

