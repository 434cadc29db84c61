package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type memoryRateLimitStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newMemoryRateLimitStore() *memoryRateLimitStore {
	return &memoryRateLimitStore{attempts: make(map[string][]time.Time)}
}

func (s *memoryRateLimitStore) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.Add(-window)
	kept := s.attempts[identifier][:0]
	for _, at := range s.attempts[identifier] {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	s.attempts[identifier] = kept
	return nil
}

func (s *memoryRateLimitStore) CountAttempts(_ context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.Add(-window)
	count := 0
	for _, at := range s.attempts[identifier] {
		if !at.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *memoryRateLimitStore) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[identifier] = append(s.attempts[identifier], at)
	return nil
}

func (s *memoryRateLimitStore) OldestAttempt(_ context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.Add(-window)
	var oldest time.Time
	found := false
	for _, at := range s.attempts[identifier] {
		if at.Before(cutoff) {
			continue
		}
		if !found || at.Before(oldest) {
			oldest = at
			found = true
		}
	}
	return oldest, found, nil
}

func newRateLimitedRouter(t *testing.T, limit int, window time.Duration, clock func() time.Time) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(newMemoryRateLimitStore(), zaptest.NewLogger(t)).WithClock(clock)

	router := gin.New()
	router.POST("/login", limiter.Limit(RateLimitRule{
		Name:       "login",
		Limit:      limit,
		Window:     window,
		Identifier: ClientIPIdentifier(),
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func performRequest(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterEnforcesLimit(t *testing.T) {
	base := time.Now()
	router := newRateLimitedRouter(t, 2, time.Minute, func() time.Time { return base })

	for i := 0; i < 2; i++ {
		if rec := performRequest(router); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := performRequest(router)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the limit is hit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on limited response")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected zero remaining, got %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	base := time.Now()
	now := base
	router := newRateLimitedRouter(t, 1, time.Minute, func() time.Time { return now })

	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	if rec := performRequest(router); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}

	now = base.Add(61 * time.Second)
	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("request after window: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiterHeadersOnAllowedRequest(t *testing.T) {
	base := time.Now()
	router := newRateLimitedRouter(t, 5, time.Minute, func() time.Time { return base })

	rec := performRequest(router)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("unexpected limit header: %s", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Fatalf("unexpected remaining header: %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
