package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	jacketmodels "ridergate/internal/jacket/models"
	"ridergate/internal/stats/models"
	verificationmodels "ridergate/internal/verification/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/requestcontext"
)

// Source answers the grouped counts a report is assembled from.
type Source interface {
	VerificationsByOutcome(ctx context.Context, w models.Window) (map[string]int, error)
	VerificationsByMethod(ctx context.Context, w models.Window) (map[string]int, error)
	VerificationsByHour(ctx context.Context, w models.Window) ([]models.HourCount, error)
	TopVerifiedRiders(ctx context.Context, w models.Window, limit int) ([]models.RiderCount, error)
	IncidentCounts(ctx context.Context, w models.Window, dim models.IncidentDimension) (map[string]int, error)
}

type JacketCounter interface {
	CountByStatus(ctx context.Context, jurisdiction domain.JurisdictionID) (map[jacketmodels.Status]int, error)
}

type Service struct {
	source  Source
	jackets JacketCounter
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithJacketCounter(jackets JacketCounter) Option {
	return func(s *Service) {
		s.jackets = jackets
	}
}

func New(source Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		tracer: otel.Tracer("ridergate/stats"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verification builds the verification report. Its queries run
// concurrently and any failure fails the report.
func (s *Service) Verification(ctx context.Context, scope models.Scope) (*models.VerificationStats, error) {
	ctx, span := s.tracer.Start(ctx, "stats.Verification")
	defer span.End()

	w, err := s.window(ctx, scope)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("stats.jurisdiction", int(w.Jurisdiction)))

	var (
		byOutcome, byMethod map[string]int
		byHour              []models.HourCount
		top                 []models.RiderCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byOutcome, err = s.source.VerificationsByOutcome(gctx, w)
		return err
	})
	g.Go(func() (err error) {
		byMethod, err = s.source.VerificationsByMethod(gctx, w)
		return err
	})
	g.Go(func() (err error) {
		byHour, err = s.source.VerificationsByHour(gctx, w)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.source.TopVerifiedRiders(gctx, w, models.TopRidersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, s.fail(ctx, err, "failed to compute verification statistics")
	}

	total := 0
	for _, n := range byOutcome {
		total += n
	}
	successful := byOutcome[string(verificationmodels.OutcomeValid)]
	return &models.VerificationStats{
		Total:       total,
		Successful:  successful,
		SuccessRate: models.SuccessRate(successful, total),
		ByMethod:    nonNil(byMethod),
		ByHour:      orEmpty(byHour),
		ByOutcome:   nonNil(byOutcome),
		TopRiders:   orEmpty(top),
		From:        w.From,
		To:          w.To,
	}, nil
}

// Incidents builds the incident report grouped by status, severity and type.
func (s *Service) Incidents(ctx context.Context, scope models.Scope) (*models.IncidentStats, error) {
	ctx, span := s.tracer.Start(ctx, "stats.Incidents")
	defer span.End()

	w, err := s.window(ctx, scope)
	if err != nil {
		return nil, err
	}
	dims := []models.IncidentDimension{models.ByStatus, models.BySeverity, models.ByType}
	counts := make([]map[string]int, len(dims))

	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range dims {
		g.Go(func() (err error) {
			counts[i], err = s.source.IncidentCounts(gctx, w, dim)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, s.fail(ctx, err, "failed to compute incident statistics")
	}

	total := 0
	for _, n := range counts[0] {
		total += n
	}
	return &models.IncidentStats{
		Total:      total,
		ByStatus:   nonNil(counts[0]),
		BySeverity: nonNil(counts[1]),
		ByType:     nonNil(counts[2]),
		From:       w.From,
		To:         w.To,
	}, nil
}

// Jackets counts jackets by status. Jacket stock has no time window.
func (s *Service) Jackets(ctx context.Context, jurisdiction domain.JurisdictionID) (*models.JacketStats, error) {
	if s.jackets == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "jacket statistics unavailable")
	}
	w, err := s.window(ctx, models.Scope{Jurisdiction: jurisdiction})
	if err != nil {
		return nil, err
	}
	counts, err := s.jackets.CountByStatus(ctx, w.Jurisdiction)
	if err != nil {
		return nil, s.fail(ctx, err, "failed to compute jacket statistics")
	}
	out := &models.JacketStats{ByStatus: map[string]int{}}
	for status, n := range counts {
		out.ByStatus[string(status)] = n
		out.Total += n
	}
	return out, nil
}

// window pins scoped callers to their own jurisdiction whatever they asked for.
func (s *Service) window(ctx context.Context, scope models.Scope) (models.Window, error) {
	if caller := requestcontext.Caller(ctx); caller.IsScoped() {
		if caller.Jurisdiction.IsZero() {
			return models.Window{}, dErrors.New(dErrors.CodeForbidden, "no jurisdiction assigned")
		}
		scope.Jurisdiction = caller.Jurisdiction
	}
	return scope.WindowAt(requestcontext.Now(ctx)), nil
}

func (s *Service) fail(ctx context.Context, err error, msg string) error {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
