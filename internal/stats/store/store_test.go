package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	incidentmodels "ridergate/internal/incident/models"
	incidentstore "ridergate/internal/incident/store"
	ridermodels "ridergate/internal/rider/models"
	"ridergate/internal/stats/models"
	verificationmodels "ridergate/internal/verification/models"
	verificationstore "ridergate/internal/verification/store"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/sentinel"
)

type riderMap map[domain.RiderID]*ridermodels.Rider

func (m riderMap) FindByID(_ context.Context, id domain.RiderID) (*ridermodels.Rider, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, sentinel.ErrNotFound
}

func attempt(rider *domain.RiderID, outcome verificationmodels.Outcome, method verificationmodels.Method, at time.Time) *verificationmodels.Attempt {
	return &verificationmodels.Attempt{
		ID:        domain.NewAttemptID(),
		RiderID:   rider,
		Outcome:   outcome,
		Method:    method,
		CreatedAt: at,
	}
}

func TestInMemoryAggregates(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)

	ade := &ridermodels.Rider{ID: domain.NewRiderID(), JacketNumber: "OG-ABK-00001", FirstName: "Ade", LastName: "Bello", JurisdictionID: 1}
	bisi := &ridermodels.Rider{ID: domain.NewRiderID(), JacketNumber: "OG-IFO-00002", FirstName: "Bisi", LastName: "Ojo", JurisdictionID: 2}
	riders := riderMap{ade.ID: ade, bisi.ID: bisi}

	attempts := verificationstore.NewInMemoryStore()
	for _, a := range []*verificationmodels.Attempt{
		attempt(&ade.ID, verificationmodels.OutcomeValid, verificationmodels.MethodSMS, base),
		attempt(&ade.ID, verificationmodels.OutcomeValid, verificationmodels.MethodWeb, base.Add(time.Hour)),
		attempt(&bisi.ID, verificationmodels.OutcomeExpired, verificationmodels.MethodWeb, base.Add(time.Hour)),
		attempt(nil, verificationmodels.OutcomeNotFound, verificationmodels.MethodSMS, base.Add(2*time.Hour)),
		attempt(&ade.ID, verificationmodels.OutcomeValid, verificationmodels.MethodSMS, base.AddDate(0, -2, 0)),
	} {
		require.NoError(t, attempts.Append(ctx, a))
	}

	incidents := incidentstore.NewInMemoryStore()
	for i, inc := range []incidentmodels.Incident{
		{Status: incidentmodels.StatusOpen, Severity: incidentmodels.SeverityHigh, Type: incidentmodels.TypeMisconduct, JurisdictionID: 1, CreatedAt: base},
		{Status: incidentmodels.StatusResolved, Severity: incidentmodels.SeverityMedium, Type: incidentmodels.TypeOther, JurisdictionID: 2, CreatedAt: base},
		{Status: incidentmodels.StatusOpen, Severity: incidentmodels.SeverityMedium, Type: incidentmodels.TypeOther, JurisdictionID: 1, CreatedAt: base.AddDate(-1, 0, 0)},
	} {
		inc.ID = domain.NewIncidentID()
		inc.ReferenceNumber = "INC-TEST-" + string(rune('A'+i))
		inc.UpdatedAt = inc.CreatedAt
		require.NoError(t, incidents.Create(ctx, &inc))
	}

	s := NewInMemoryStore(attempts, incidents, riders)
	all := models.Window{From: base.AddDate(0, 0, -1), To: base.AddDate(0, 0, 1)}

	t.Run("by outcome ignores attempts outside the window", func(t *testing.T) {
		got, err := s.VerificationsByOutcome(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"valid": 2, "expired": 1, "not_found": 1}, got)
	})

	t.Run("by method", func(t *testing.T) {
		got, err := s.VerificationsByMethod(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"sms": 2, "web": 2}, got)
	})

	t.Run("by hour is ordered", func(t *testing.T) {
		got, err := s.VerificationsByHour(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, []models.HourCount{{Hour: 8, Count: 1}, {Hour: 9, Count: 2}, {Hour: 10, Count: 1}}, got)
	})

	t.Run("jurisdiction goes through the rider", func(t *testing.T) {
		scoped := all
		scoped.Jurisdiction = 1
		got, err := s.VerificationsByOutcome(ctx, scoped)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"valid": 2}, got)
	})

	t.Run("top riders", func(t *testing.T) {
		got, err := s.TopVerifiedRiders(ctx, all, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ade.ID, got[0].RiderID)
		assert.Equal(t, 2, got[0].Count)
	})

	t.Run("incident counts", func(t *testing.T) {
		got, err := s.IncidentCounts(ctx, all, models.ByStatus)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"open": 1, "resolved": 1}, got)

		scoped := all
		scoped.Jurisdiction = 2
		got, err = s.IncidentCounts(ctx, scoped, models.ByType)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"other": 1}, got)

		_, err = s.IncidentCounts(ctx, all, models.IncidentDimension("reporter_phone"))
		assert.Error(t, err)
	})
}

func TestPostgresVerificationsByOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT v.result, COUNT(*) FROM verifications v LEFT JOIN riders r ON r.id = v.rider_id WHERE v.created_at >= $1 AND v.created_at < $2 AND r.jurisdiction_id = $3 GROUP BY v.result`)).
		WithArgs(from, to, 7).
		WillReturnRows(sqlmock.NewRows([]string{"result", "count"}).AddRow("valid", 12).AddRow("expired", 3))

	got, err := NewPostgres(db).VerificationsByOutcome(context.Background(), models.Window{Jurisdiction: 7, From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"valid": 12, "expired": 3}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVerificationsByHour(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`EXTRACT(HOUR FROM v.created_at)::int AS hour`)).
		WillReturnRows(sqlmock.NewRows([]string{"hour", "count"}).AddRow(7, 4).AddRow(18, 9))

	got, err := NewPostgres(db).VerificationsByHour(context.Background(), models.Window{})
	require.NoError(t, err)
	assert.Equal(t, []models.HourCount{{Hour: 7, Count: 4}, {Hour: 18, Count: 9}}, got)
}

func TestPostgresTopVerifiedRiders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)
	id := uuid.New()
	mock.ExpectQuery(`ORDER BY verifications DESC, r.jacket_number\s+LIMIT \$3`).
		WithArgs(from, to, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "jacket_number", "first_name", "last_name", "verifications"}).
			AddRow(id.String(), "OG-ABK-00001", "Ade", "Bello", 5))

	got, err := NewPostgres(db).TopVerifiedRiders(context.Background(), models.Window{From: from, To: to}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RiderID(id), got[0].RiderID)
	assert.Equal(t, 5, got[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIncidentCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT i."severity", COUNT(*) FROM incidents i LEFT JOIN riders r ON r.id = i.rider_id GROUP BY i."severity"`)).
		WillReturnRows(sqlmock.NewRows([]string{"severity", "count"}).AddRow("high", 2))

	got, err := NewPostgres(db).IncidentCounts(context.Background(), models.Window{}, models.BySeverity)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"high": 2}, got)

	_, err = NewPostgres(db).IncidentCounts(context.Background(), models.Window{}, "description")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
