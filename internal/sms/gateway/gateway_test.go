package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/sms/models"
	"ridergate/pkg/platform/circuit"
)

var msg = models.Outgoing{To: "+2348012345678", From: "OGUN-TRANS", Body: "hello"}

func TestHTTPSender(t *testing.T) {
	t.Run("posts the provider payload and accepts ok", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, `{"code":"ok","message_id":"m-1"}`)
		}))
		defer srv.Close()

		receipt, err := NewHTTPSender(srv.URL, "key-1", time.Second).Send(context.Background(), msg)
		require.NoError(t, err)
		assert.True(t, receipt.Accepted)
		assert.Equal(t, "m-1", receipt.MessageID)
		assert.JSONEq(t, `{"code":"ok","message_id":"m-1"}`, receipt.Raw)
		assert.Equal(t, map[string]string{
			"to": msg.To, "from": msg.From, "sms": "hello",
			"type": "plain", "channel": "generic", "api_key": "key-1",
		}, got)
	})

	t.Run("refusal is a receipt, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"code":"invalid_number"}`)
		}))
		defer srv.Close()

		receipt, err := NewHTTPSender(srv.URL, "k", time.Second).Send(context.Background(), msg)
		require.NoError(t, err)
		assert.False(t, receipt.Accepted)
		assert.Contains(t, receipt.Raw, "invalid_number")
	})

	t.Run("server error is a gateway failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPSender(srv.URL, "k", time.Second).Send(context.Background(), msg)
		assert.ErrorIs(t, err, ErrGateway)
	})

	t.Run("unreachable provider is a gateway failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPSender(url, "k", time.Second).Send(context.Background(), msg)
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestLogSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	receipt, err := NewLogSender(logger, "").Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, receipt.Accepted)
	assert.Contains(t, receipt.MessageID, "log-")

	receipt, err = NewLogSender(logger, "circuit open").Send(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, receipt.Accepted)
	assert.Contains(t, receipt.Raw, "circuit open")
}

type senderFunc func(ctx context.Context, msg models.Outgoing) (*models.Receipt, error)

func (f senderFunc) Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error) {
	return f(ctx, msg)
}

func TestBreakerSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	failing := senderFunc(func(context.Context, models.Outgoing) (*models.Receipt, error) {
		return nil, ErrGateway
	})
	fallback := NewLogSender(logger, "sms gateway circuit open")

	t.Run("errors surface until the breaker opens", func(t *testing.T) {
		breaker := circuit.New("sms", circuit.WithFailureThreshold(2))
		s := NewBreakerSender(failing, fallback, breaker, logger)

		_, err := s.Send(context.Background(), msg)
		require.ErrorIs(t, err, ErrGateway)

		receipt, err := s.Send(context.Background(), msg)
		require.NoError(t, err)
		assert.False(t, receipt.Accepted)
		assert.True(t, breaker.IsOpen())
	})

	t.Run("non-gateway errors do not count", func(t *testing.T) {
		breaker := circuit.New("sms", circuit.WithFailureThreshold(1))
		boom := errors.New("encode failed")
		s := NewBreakerSender(senderFunc(func(context.Context, models.Outgoing) (*models.Receipt, error) {
			return nil, boom
		}), fallback, breaker, logger)

		_, err := s.Send(context.Background(), msg)
		assert.ErrorIs(t, err, boom)
		assert.False(t, breaker.IsOpen())
	})

	t.Run("successes close an open breaker", func(t *testing.T) {
		breaker := circuit.New("sms", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))
		breaker.RecordFailure()
		require.True(t, breaker.IsOpen())

		ok := senderFunc(func(context.Context, models.Outgoing) (*models.Receipt, error) {
			return &models.Receipt{Accepted: true}, nil
		})
		receipt, err := NewBreakerSender(ok, fallback, breaker, logger).Send(context.Background(), msg)
		require.NoError(t, err)
		assert.True(t, receipt.Accepted)
		assert.False(t, breaker.IsOpen())
	})
}
