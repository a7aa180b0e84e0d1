package gateway

import (
	"context"
	"errors"
	"log/slog"

	"ridergate/internal/sms/models"
	"ridergate/pkg/platform/circuit"
)

type Sender interface {
	Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error)
}

// BreakerSender always tries the primary. Consecutive ErrGateway failures
// open the breaker, after which failed sends are answered by the fallback
// instead of returning the error.
type BreakerSender struct {
	primary  Sender
	fallback Sender
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewBreakerSender(primary, fallback Sender, breaker *circuit.Breaker, logger *slog.Logger) *BreakerSender {
	return &BreakerSender{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *BreakerSender) Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error) {
	receipt, err := s.primary.Send(ctx, msg)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.log(ctx, slog.LevelInfo, "sms gateway circuit closed")
		}
		return receipt, nil
	}
	if !errors.Is(err, ErrGateway) {
		return nil, err
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.log(ctx, slog.LevelWarn, "sms gateway circuit opened", "error", err)
	}
	if !useFallback || s.fallback == nil {
		return nil, err
	}
	return s.fallback.Send(ctx, msg)
}

func (s *BreakerSender) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	args = append(args, "breaker", s.breaker.Name())
	s.logger.Log(ctx, level, msg, args...)
}
