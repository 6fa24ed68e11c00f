package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"mandate/internal/ratelimit/metrics"
	"mandate/internal/ratelimit/models"
	"mandate/internal/ratelimit/store/bucket"
	"mandate/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

type RateLimitSuite struct {
	suite.Suite
	logger  *slog.Logger
	metrics *metrics.Metrics
	next    http.Handler
	calls   int
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.calls = 0
	s.next = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.calls++
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *RateLimitSuite) serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/mandates", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "", ""))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *RateLimitSuite) TestRateLimit() {
	s.Run("refuses once the budget is spent", func() {
		mw := New(bucket.NewInMemoryBucketStore(), s.logger,
			WithMetrics(s.metrics),
			WithLimit(models.ClassPublic, models.Limit{Requests: 2, Window: time.Minute}),
		)
		h := mw.RateLimit(models.ClassPublic)(s.next)

		first := s.serve(h, "10.0.0.1")
		s.Equal(http.StatusNoContent, first.Code)
		s.Equal("2", first.Header().Get("X-RateLimit-Limit"))
		s.Equal("1", first.Header().Get("X-RateLimit-Remaining"))
		s.Equal(http.StatusNoContent, s.serve(h, "10.0.0.1").Code)

		refused := s.serve(h, "10.0.0.1")
		s.Equal(http.StatusTooManyRequests, refused.Code)
		s.NotEmpty(refused.Header().Get("Retry-After"))
		s.Contains(refused.Body.String(), "rate_limit_exceeded")
		s.Equal(2, s.calls)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RateLimitRejections.WithLabelValues("public")))

		s.Equal(http.StatusNoContent, s.serve(h, "10.0.0.2").Code)
	})

	s.Run("store errors fail open", func() {
		s.calls = 0
		mw := New(failingStore{}, s.logger,
			WithMetrics(s.metrics),
			WithLimit(models.ClassLogin, models.Limit{Requests: 1, Window: time.Minute}),
		)
		rec := s.serve(mw.RateLimit(models.ClassLogin)(s.next), "10.0.0.1")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal(1, s.calls)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RateLimitErrors))
	})

	s.Run("disabled or unconfigured classes pass through", func() {
		s.calls = 0
		disabled := New(failingStore{}, s.logger, WithDisabled(true),
			WithLimit(models.ClassLogin, models.Limit{Requests: 1, Window: time.Minute}))
		s.Equal(http.StatusNoContent, s.serve(disabled.RateLimit(models.ClassLogin)(s.next), "10.0.0.1").Code)

		unconfigured := New(failingStore{}, s.logger)
		s.Equal(http.StatusNoContent, s.serve(unconfigured.RateLimit(models.ClassPublic)(s.next), "10.0.0.1").Code)
		s.Equal(2, s.calls)
	})
}
