package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/port"
)

const (
	rateLimitProblemType  = "https://api.tripshot.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// IdentifierFunc extracts the identifier used to scope rate limits.
type IdentifierFunc func(*gin.Context) (string, bool)

// ClientIPIdentifier scopes limits by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimitRule configures a sliding-window limit.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// ProblemDetails is an RFC 9457 compatible error payload for rate limits.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// RateLimiter enforces sliding-window limits backed by a RateLimitStore.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds the middleware helper. A nil store disables limiting.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock injects a custom clock, primarily for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// Limit returns a Gin middleware enforcing the provided rule. Store failures
// fail open so a Redis outage never blocks logins outright.
func (rl *RateLimiter) Limit(rule RateLimitRule) gin.HandlerFunc {
	if rl.store == nil || rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if rule.Name == "" {
		rule.Name = "default"
	}

	return func(c *gin.Context) {
		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", rule.Name, identifier)
		now := rl.now()
		ctx := c.Request.Context()

		if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
			rl.logger.Warn("rate limit trim failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
		if err != nil {
			rl.logger.Warn("rate limit count failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		reset := now.Add(rule.Window)
		if oldest, has, err := rl.store.OldestAttempt(ctx, key, rule.Window, now); err == nil && has {
			reset = oldest.Add(rule.Window)
		}

		if count >= rule.Limit {
			retryAfter := reset.Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
			rl.applyHeaders(c, rule.Limit, 0, reset)
			rl.respondRateLimited(c, retryAfter)
			return
		}

		if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		remaining := rule.Limit - count - 1
		if remaining < 0 {
			remaining = 0
		}
		rl.applyHeaders(c, rule.Limit, remaining, reset)

		c.Next()
	}
}

func (rl *RateLimiter) applyHeaders(c *gin.Context, limit, remaining int, reset time.Time) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

func (rl *RateLimiter) respondRateLimited(c *gin.Context, retryAfter time.Duration) {
	retrySeconds := int(math.Ceil(retryAfter.Seconds()))
	if retrySeconds < 0 {
		retrySeconds = 0
	}

	c.Writer.Header().Set("Retry-After", strconv.Itoa(retrySeconds))

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", retrySeconds),
		Instance:   instance,
		RetryAfter: retrySeconds,
		TraceID:    GetTraceID(c),
	})
}
