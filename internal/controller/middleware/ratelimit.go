// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"shiftplane/pkg/api"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client. A limit of 0 disables it.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	keyFunc  func(*http.Request) string
	limiters sync.Map // client key -> *clientLimiter
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithTTL sets how long an idle client's limiter is kept before it is rebuilt.
func WithTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) { rl.ttl = ttl }
}

// WithKeyFunc replaces the default client key (the remote IP).
func WithKeyFunc(fn func(*http.Request) string) RateLimiterOption {
	return func(rl *RateLimiter) { rl.keyFunc = fn }
}

// NewRateLimiter allows limit requests per second per client with the given burst.
func NewRateLimiter(limit float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(limit),
		burst:   burst,
		ttl:     5 * time.Minute,
		keyFunc: clientIP,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware returns the http middleware enforcing the limit.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.limit > 0 && !rl.limiterFor(rl.keyFunc(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(api.ErrorResponse{
					Errors: []api.ErrorMessage{{Message: "Too Many Requests"}},
					Code:   "429",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func (rl *RateLimiter) newClient(now time.Time) *clientLimiter {
	c := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	c.lastSeen.Store(now.UnixNano())
	return c
}

func (rl *RateLimiter) idle(c *clientLimiter, now time.Time) bool {
	return now.Sub(time.Unix(0, c.lastSeen.Load())) >= rl.ttl
}

// limiterFor returns the client's limiter, replacing it once it has been idle
// for longer than the TTL. Concurrent first requests share one limiter.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()
	for {
		v, ok := rl.limiters.Load(key)
		if !ok {
			c := rl.newClient(now)
			if _, loaded := rl.limiters.LoadOrStore(key, c); !loaded {
				return c.limiter
			}
			continue
		}

		c := v.(*clientLimiter)
		if !rl.idle(c, now) {
			c.lastSeen.Store(now.UnixNano())
			return c.limiter
		}
		fresh := rl.newClient(now)
		if rl.limiters.CompareAndSwap(key, c, fresh) {
			return fresh.limiter
		}
	}
}

// Evict drops the limiters of clients idle for longer than the TTL and
// returns how many were removed.
func (rl *RateLimiter) Evict(now time.Time) int {
	removed := 0
	rl.limiters.Range(func(key, v any) bool {
		if rl.idle(v.(*clientLimiter), now) && rl.limiters.CompareAndDelete(key, v) {
			removed++
		}
		return true
	})
	return removed
}

// RunEviction calls Evict once per TTL until ctx is cancelled.
func (rl *RateLimiter) RunEviction(ctx context.Context) {
	if rl.limit <= 0 || rl.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.Evict(now)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
