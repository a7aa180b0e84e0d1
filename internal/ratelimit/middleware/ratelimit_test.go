package middleware

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks Limiter,AuditPublisher

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ridergate/internal/ratelimit/middleware/mocks"
	"ridergate/internal/ratelimit/models"
	"ridergate/internal/ratelimit/store/bucket"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/platform/audit"
	"ridergate/pkg/platform/circuit"
	"ridergate/pkg/testutil"
)

var testLimit = models.Limit{Requests: 2, Window: time.Minute}

type MiddlewareSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	primary   *mocks.MockLimiter
	publisher *mocks.MockAuditPublisher
	logger    *slog.Logger
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.primary = mocks.NewMockLimiter(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *MiddlewareSuite) serve(m *Middleware) *httptest.ResponseRecorder {
	h := m.Limit(models.ClassVerify)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/verify/OG-ABK-00001", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	return testutil.DoRequest(h, req)
}

func (s *MiddlewareSuite) TestAllowedRequestCarriesHeaders() {
	reset := time.Unix(1700000000, 0)
	s.primary.EXPECT().Allow(gomock.Any(), "rl:verify:10.1.2.3", testLimit).
		Return(&models.Result{Allowed: true, Limit: 2, Remaining: 1, ResetAt: reset}, nil)

	rr := s.serve(New(s.primary, testLimit, s.logger))
	s.Equal(http.StatusNoContent, rr.Code)
	s.Equal("2", rr.Header().Get("X-RateLimit-Limit"))
	s.Equal("1", rr.Header().Get("X-RateLimit-Remaining"))
	s.Equal("1700000000", rr.Header().Get("X-RateLimit-Reset"))
	s.Empty(rr.Header().Get("X-RateLimit-Status"))
}

func (s *MiddlewareSuite) TestDeniedRequest() {
	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.Result{Allowed: false, Limit: 2, ResetAt: time.Now().Add(30 * time.Second), RetryAfter: 30}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, e audit.Event) error {
			s.Equal(string(audit.EventRateLimitExceeded), e.Action)
			s.Equal("10.1.2.3", e.IP)
			s.Equal("verify", e.Subject)
			return nil
		})

	rr := s.serve(New(s.primary, testLimit, s.logger, WithAuditPublisher(s.publisher)))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, dErrors.CodeRateLimited)
	s.Equal("30", rr.Header().Get("Retry-After"))
	s.Equal("0", rr.Header().Get("X-RateLimit-Remaining"))
}

func (s *MiddlewareSuite) TestLimiterErrorFailsOpen() {
	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	rr := s.serve(New(s.primary, testLimit, s.logger))
	s.Equal(http.StatusNoContent, rr.Code)
	s.Empty(rr.Header().Get("X-RateLimit-Limit"))
}

func (s *MiddlewareSuite) TestBreakerSwitchesToFallback() {
	breaker := circuit.New("ratelimit", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	m := New(s.primary, testLimit, s.logger, WithFallback(bucket.NewInMemoryStore(), breaker))

	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")).Times(4)

	s.Run("first failure still fails open", func() {
		rr := s.serve(m)
		s.Equal(http.StatusNoContent, rr.Code)
		s.Empty(rr.Header().Get("X-RateLimit-Status"))
	})

	s.Run("breaker opens and fallback limits", func() {
		rr := s.serve(m)
		s.Equal(http.StatusNoContent, rr.Code)
		s.Equal("degraded", rr.Header().Get("X-RateLimit-Status"))
		s.Equal("1", rr.Header().Get("X-RateLimit-Remaining"))
		s.True(breaker.IsOpen())

		rr = s.serve(m)
		s.Equal(http.StatusNoContent, rr.Code)

		rr = s.serve(m)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, dErrors.CodeRateLimited)
	})

	s.Run("primary recovery closes the breaker", func() {
		s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&models.Result{Allowed: true, Limit: 2, Remaining: 1, ResetAt: time.Now()}, nil)
		rr := s.serve(m)
		s.Equal(http.StatusNoContent, rr.Code)
		s.Empty(rr.Header().Get("X-RateLimit-Status"))
		s.False(breaker.IsOpen())
	})
}

func (s *MiddlewareSuite) TestDisabled() {
	rr := s.serve(New(s.primary, testLimit, s.logger, WithDisabled(true)))
	s.Equal(http.StatusNoContent, rr.Code)
}
