// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimitConfig configures the per-client limiter. EndpointLimits are
// keyed by "METHOD path" using the route path, e.g. "POST /posts".
type RateLimitConfig struct {
	DefaultLimit   rate.Limit
	DefaultBurst   int
	BlockDuration  time.Duration
	EndpointLimits map[string]EndpointLimit
}

type EndpointLimit struct {
	Every time.Duration
	Burst int
}

// RateLimiter keeps one token bucket per client IP and route. A client that
// exhausts a bucket is blocked on that route only; its other routes keep working.
type RateLimiter struct {
	limiters       map[string]*rate.Limiter
	blocked        map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

// DefaultRateLimitConfig returns the limits used by the server. They only
// catch floods; ordinary clients never see a 429.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		DefaultLimit:  rate.Every(10 * time.Millisecond), // 100 requests per second
		DefaultBurst:  200,
		BlockDuration: time.Minute,
		EndpointLimits: map[string]EndpointLimit{
			"POST /posts":        {Every: 20 * time.Millisecond, Burst: 100},
			"POST /posts/upload": {Every: 200 * time.Millisecond, Burst: 20},
		},
	}
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	limiter := &RateLimiter{
		limiters:       make(map[string]*rate.Limiter),
		blocked:        make(map[string]time.Time),
		defaultLimit:   config.DefaultLimit,
		defaultBurst:   config.DefaultBurst,
		blockDuration:  config.BlockDuration,
		endpointLimits: make(map[string]endpointLimit, len(config.EndpointLimits)),
		now:            time.Now,
	}
	for key, l := range config.EndpointLimits {
		limiter.endpointLimits[key] = endpointLimit{limit: rate.Every(l.Every), burst: l.Burst}
	}
	return limiter
}

// Cleanup drops expired blocks every interval until done is closed
func (r *RateLimiter) Cleanup(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for key, blockUntil := range r.blocked {
				if now.After(blockUntil) {
					delete(r.blocked, key)
					// Also remove the limiter to reset its state
					delete(r.limiters, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

// RateLimit identifies clients with c.RealIP, so the server must set
// e.IPExtractor to something that does not trust client headers.
func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Static uploads are not rate limited
			if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
				return next(c)
			}

			route := c.Request().Method + " " + c.Path()
			key := c.RealIP() + "|" + route

			r.mu.Lock()
			now := r.now()
			if blockUntil, blocked := r.blocked[key]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				// Block has expired - remove it and reset the limiter
				delete(r.blocked, key)
				delete(r.limiters, key)
			}

			limiter, exists := r.limiters[key]
			if !exists {
				limit, burst := r.defaultLimit, r.defaultBurst
				if l, ok := r.endpointLimits[route]; ok {
					limit, burst = l.limit, l.burst
				}
				limiter = rate.NewLimiter(limit, burst)
				r.limiters[key] = limiter
			}

			if !limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blocked[key] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, map[string]string{
		"error":      "Too many requests",
		"retryAfter": retryAfter.Format(time.RFC3339),
	})
}
