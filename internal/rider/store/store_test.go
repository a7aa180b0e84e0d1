package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/rider/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
	txcontext "ridergate/pkg/platform/tx"
)

func newRider(jurisdiction domain.JurisdictionID, seq int, registered time.Time) *models.Rider {
	return &models.Rider{
		ID:               domain.NewRiderID(),
		JacketNumber:     domain.FormatJacketNumber("ABN", seq),
		FirstName:        "Rider",
		LastName:         fmt.Sprintf("Seq%d", seq),
		Phone:            fmt.Sprintf("0803%07d", seq),
		JurisdictionID:   jurisdiction,
		VehicleType:      models.VehicleMotorcycle,
		Status:           models.StatusActive,
		RegistrationDate: registered,
	}
}

func TestInMemoryCreateUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := newRider(1, 1, time.Now())
	require.NoError(t, s.Create(ctx, base))

	t.Run("duplicate phone", func(t *testing.T) {
		r := newRider(1, 2, time.Now())
		r.Phone = base.Phone
		assert.ErrorIs(t, s.Create(ctx, r), ErrDuplicatePhone)
	})
	t.Run("duplicate jacket number", func(t *testing.T) {
		r := newRider(1, 1, time.Now())
		r.Phone = "08099999999"
		assert.ErrorIs(t, s.Create(ctx, r), ErrDuplicateJacketNumber)
		assert.ErrorIs(t, s.Create(ctx, r), sentinel.ErrConflict)
	})
	t.Run("count includes only the jurisdiction", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, newRider(2, 7, time.Now())))
		n, err := s.CountByJurisdiction(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestInMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	a := newRider(1, 1, time.Now())
	b := newRider(1, 2, time.Now())
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	t.Run("phone owned by another rider", func(t *testing.T) {
		cp := *a
		cp.Phone = b.Phone
		assert.ErrorIs(t, s.Update(ctx, &cp), ErrDuplicatePhone)
	})
	t.Run("jacket number is immutable", func(t *testing.T) {
		cp := *a
		cp.JacketNumber = "OG-ABN-09999"
		cp.Phone = "08011112222"
		require.NoError(t, s.Update(ctx, &cp))
		got, err := s.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.JacketNumber, got.JacketNumber)
		assert.Equal(t, "08011112222", got.Phone)

		_, err = s.FindByJacketNumber(ctx, "OG-ABN-09999")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
	t.Run("missing rider", func(t *testing.T) {
		assert.ErrorIs(t, s.Update(ctx, newRider(1, 50, time.Now())), sentinel.ErrNotFound)
	})
	t.Run("stale write cannot reactivate a revoked rider", func(t *testing.T) {
		stale, err := s.FindByID(ctx, b.ID)
		require.NoError(t, err)

		revoked := *stale
		revoked.Status = models.StatusRevoked
		require.NoError(t, s.Update(ctx, &revoked))

		stale.FirstName = "Renamed"
		err = s.Update(ctx, stale)
		assert.ErrorIs(t, err, ErrRiderRevoked)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)

		got, err := s.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRevoked, got.Status)
		assert.Equal(t, "Rider", got.FirstName)
	})
	t.Run("revoked rider keeps accepting revoked writes", func(t *testing.T) {
		got, err := s.FindByID(ctx, b.ID)
		require.NoError(t, err)
		got.Address = "12 Lafenwa Road"
		require.NoError(t, s.Update(ctx, got))
	})
}

func TestPostgresUpdateGuardsRevokedStatus(t *testing.T) {
	updateSQL := regexp.QuoteMeta(`WHERE id = $1 AND (status <> 'revoked' OR $11 = 'revoked')`)
	statusSQL := regexp.QuoteMeta(`SELECT status FROM riders WHERE id = $1`)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock, id uuid.UUID)
		wantErr error
	}{
		{
			name: "row updated",
			setup: func(mock sqlmock.Sqlmock, _ uuid.UUID) {
				mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "stored rider is revoked",
			setup: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(statusSQL).WithArgs(id).
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("revoked"))
			},
			wantErr: ErrRiderRevoked,
		},
		{
			name: "rider missing",
			setup: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(statusSQL).WithArgs(id).WillReturnError(sql.ErrNoRows)
			},
			wantErr: sentinel.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			r := newRider(1, 1, time.Now())
			tt.setup(mock, uuid.UUID(r.ID))

			err = NewPostgres(db).Update(context.Background(), r)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInMemoryList(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore().WithJurisdictionLookup(func(domain.JurisdictionID) (string, string) {
		return "Abeokuta North", "ABN"
	})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		r := newRider(1, i, start.Add(time.Duration(i)*time.Hour))
		if i == 3 {
			r.Status = models.StatusSuspended
			r.FirstName = "Bayo"
		}
		require.NoError(t, s.Create(ctx, r))
	}
	require.NoError(t, s.Create(ctx, newRider(2, 40, start)))

	t.Run("newest first with total", func(t *testing.T) {
		got, total, err := s.List(ctx, models.ListFilter{Jurisdiction: 1}, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, got, 2)
		assert.Equal(t, "OG-ABN-00005", got[0].JacketNumber)
		assert.Equal(t, "Abeokuta North", got[0].JurisdictionName)
	})
	t.Run("offset past the end", func(t *testing.T) {
		got, total, err := s.List(ctx, models.ListFilter{}, 10, 100)
		require.NoError(t, err)
		assert.Equal(t, 6, total)
		assert.Empty(t, got)
	})
	t.Run("status and search", func(t *testing.T) {
		got, _, err := s.List(ctx, models.ListFilter{Statuses: []models.Status{models.StatusSuspended}}, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Bayo", got[0].FirstName)

		got, _, err = s.List(ctx, models.ListFilter{Search: "BAY"}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, _, err = s.List(ctx, models.ListFilter{Search: "og-abn-0000"}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

func TestPostgresLockJurisdiction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgres(db)

	t.Run("requires a transaction", func(t *testing.T) {
		assert.Error(t, s.LockJurisdiction(context.Background(), 3))
	})

	t.Run("locks inside the transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)).
			WithArgs(allocationLockClass, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		require.NoError(t, s.LockJurisdiction(txcontext.WithTx(context.Background(), tx), 3))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCreateTranslatesUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"riders_phone_key", ErrDuplicatePhone},
		{"riders_jacket_number_key", ErrDuplicateJacketNumber},
		{"riders_pkey", sentinel.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`INSERT INTO riders`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err = NewPostgres(db).Create(context.Background(), newRider(1, 1, time.Now()))
			assert.ErrorIs(t, err, tt.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresFindByJacketNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgres(db)

	columns := []string{
		"id", "jacket_number", "first_name", "last_name", "phone", "email",
		"jurisdiction_id", "name", "code", "vehicle_type", "vehicle_plate", "address",
		"emergency_contact_name", "emergency_contact_phone", "status",
		"registration_date", "expiry_date", "created_by", "updated_at",
	}
	id := uuid.New()
	registered := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`WHERE r.jacket_number = \$1`).WithArgs("OG-IFO-00012").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id.String(), "OG-IFO-00012", "Sola", "Ogun", "08031234567", nil,
				5, "Ifo", "IFO", "tricycle", "IFO-221-AA", nil,
				nil, nil, "active",
				registered, expiry, nil, registered,
			))

		r, err := s.FindByJacketNumber(context.Background(), "OG-IFO-00012")
		require.NoError(t, err)
		assert.Equal(t, domain.RiderID(id), r.ID)
		assert.Equal(t, "IFO", r.JurisdictionCode)
		assert.Equal(t, models.VehicleTricycle, r.VehicleType)
		require.NotNil(t, r.ExpiryDate)
		assert.Equal(t, expiry, *r.ExpiryDate)
		assert.True(t, r.CreatedBy.IsNil())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`WHERE r.jacket_number = \$1`).WithArgs("OG-IFO-99999").
			WillReturnError(sql.ErrNoRows)
		_, err := s.FindByJacketNumber(context.Background(), "OG-IFO-99999")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListBuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	filter := models.ListFilter{
		Statuses:     []models.Status{models.StatusActive},
		Jurisdiction: 4,
		Search:       "bayo",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM riders r WHERE r.status = ANY($1) AND r.jurisdiction_id = $2 AND (r.first_name ILIKE $3`)).
		WithArgs(pq.Array([]string{"active"}), 4, "%bayo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY r.registration_date DESC LIMIT $4 OFFSET $5`)).
		WithArgs(pq.Array([]string{"active"}), 4, "%bayo%", 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, total, err := NewPostgres(db).List(context.Background(), filter, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildWhereEmpty(t *testing.T) {
	where, args := buildWhere(models.ListFilter{})
	assert.Empty(t, where)
	assert.Nil(t, args)
}
