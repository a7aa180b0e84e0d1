package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"ridergate/internal/ratelimit/metrics"
	"ridergate/internal/ratelimit/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/platform/audit"
	"ridergate/pkg/platform/circuit"
	"ridergate/pkg/platform/httputil"
	metadata "ridergate/pkg/platform/middleware/metadata"
	request "ridergate/pkg/platform/middleware/request"
)

// Limiter is a sliding window store.
type Limiter interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Middleware limits public endpoints per client IP. Limiter errors fail
// open. With a fallback configured, consecutive primary errors open the
// breaker and failed checks are answered by the fallback instead.
type Middleware struct {
	primary        Limiter
	fallback       Limiter
	breaker        *circuit.Breaker
	limit          models.Limit
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	disabled       bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithFallback(fallback Limiter, breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.fallback = fallback
		m.breaker = breaker
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditPublisher = publisher
	}
}

func New(primary Limiter, limit models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		limit:   limit,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fallback != nil && m.breaker == nil {
		m.breaker = circuit.New("ratelimit")
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit returns middleware enforcing the per-IP budget for class.
func (m *Middleware) Limit(class models.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := metadata.GetClientIP(ctx)
			if ip == "" {
				ip = metadata.ClientIPFromRequest(r)
			}

			result, degraded, err := m.check(ctx, models.Key(class, ip))
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"error", err,
					"class", string(class),
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result, degraded)
			if m.metrics != nil {
				m.metrics.IncDecision(string(class), result.Allowed)
			}
			if !result.Allowed {
				m.denied(ctx, class, ip)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool, error) {
	result, err := m.primary.Allow(ctx, key, m.limit)
	if m.breaker == nil {
		return result, false, err
	}
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.logger.InfoContext(ctx, "rate limit circuit closed", "breaker", m.breaker.Name())
			m.setFallback(false)
		}
		return result, false, nil
	}

	if m.metrics != nil {
		m.metrics.IncLimiterError()
	}
	useFallback, change := m.breaker.RecordFailure()
	if change.Opened {
		m.logger.WarnContext(ctx, "rate limit circuit opened", "breaker", m.breaker.Name(), "error", err)
		m.setFallback(true)
	}
	if !useFallback {
		return nil, false, err
	}
	result, err = m.fallback.Allow(ctx, key, m.limit)
	return result, true, err
}

func (m *Middleware) setFallback(active bool) {
	if m.metrics != nil {
		m.metrics.SetFallback(active)
	}
}

func (m *Middleware) denied(ctx context.Context, class models.Class, ip string) {
	event := string(audit.EventRateLimitExceeded)
	m.logger.WarnContext(ctx, event,
		"class", string(class),
		"client_ip", ip,
		"request_id", request.GetRequestID(ctx),
		"log_type", "security",
	)
	if m.auditPublisher == nil {
		return
	}
	_ = m.auditPublisher.Emit(ctx, audit.Event{
		Action:    event,
		Subject:   string(class),
		Decision:  "denied",
		RequestID: request.GetRequestID(ctx),
		IP:        ip,
	})
}

func addHeaders(w http.ResponseWriter, result *models.Result, degraded bool) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
