package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

// IdentifierFunc extracts the identifier a rule is scoped by, e.g. client IP.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a sliding-window limit for one identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits backed by a RateLimitStore.
// Store trouble fails open: a limiter outage must not take logins down.
type RateLimiter struct {
	store port.RateLimitStore
	log   *zap.Logger
	now   func() time.Time
}

// NewRateLimiter builds the reusable limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, log *zap.Logger) *RateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimiter{store: store, log: log, now: time.Now}
}

// WithClock overrides the internal clock, used in tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimit returns a Gin middleware enforcing the provided rules.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if len(active) == 0 || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			key := fmt.Sprintf("%s:%s", rule.Name, identifier)
			allowed, retryAfter, err := rl.check(c, rule, key, now)
			if err != nil {
				rl.log.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.Error(err),
				)
				continue
			}

			if !allowed {
				rl.respondLimited(c, rule, retryAfter)
				return
			}
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(c *gin.Context, rule RateLimitRule, key string, now time.Time) (bool, time.Duration, error) {
	ctx := c.Request.Context()

	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return true, 0, err
	}

	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return true, 0, err
	}

	if count >= rule.Limit {
		retryAfter := rule.Window
		if oldest, ok, err := rl.store.OldestAttempt(ctx, key, rule.Window, now); err == nil && ok {
			retryAfter = oldest.Add(rule.Window).Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return true, 0, err
	}

	remaining := rule.Limit - count - 1
	if remaining < 0 {
		remaining = 0
	}
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

	return true, 0, nil
}

func (rl *RateLimiter) respondLimited(c *gin.Context, rule RateLimitRule, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}

	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
	headers.Set("X-RateLimit-Remaining", "0")
	headers.Set("Retry-After", strconv.Itoa(seconds))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"message":    "too many requests",
		"retryAfter": seconds,
		"traceId":    GetTraceID(c),
	})
}
