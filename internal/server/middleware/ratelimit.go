package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 10 * time.Minute
	limiterIdleAfter  = 30 * time.Minute
)

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet hands out one token bucket per key. Idle buckets are dropped
// by a sweeper that stops with ctx.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	rps      rate.Limit
	burst    int
}

func newLimiterSet(ctx context.Context, requestsPerSecond float64, burst int) *limiterSet {
	s := &limiterSet{
		limiters: make(map[string]*keyedLimiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
	go s.sweep(ctx)
	return s
}

func (s *limiterSet) sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			cutoff := time.Now().Add(-limiterIdleAfter)
			for key, kl := range s.limiters {
				if kl.lastAccess.Before(cutoff) {
					delete(s.limiters, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	kl, ok := s.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[key] = kl
	}
	kl.lastAccess = time.Now()
	s.mu.Unlock()
	return kl.limiter.Allow()
}

func tooManyRequests(w http.ResponseWriter) {
	http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
}

// RateLimitByIP applies per-client-address rate limiting to the login
// routes, where no tenant is known yet.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet(ctx, requestsPerSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.allow(clientIP(r)) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-tenant rate limiting. Demo callers are keyed by
// client address so one visitor cannot exhaust the others.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet(ctx, requestsPerSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := TenantFromContext(r.Context())
			key := t.String()
			if t.IsDemo() {
				key += ":" + clientIP(r)
			}
			if !set.allow(key) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
