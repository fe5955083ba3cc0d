package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
)

// RateLimiter decides whether a client key may make another request.
// Reset clears all state; tests call it between cases.
type RateLimiter interface {
	Allow(key string) bool
	Reset()
}

// NewRateLimiter picks the implementation named by cfg.Strategy.
func NewRateLimiter(cfg config.RateLimitConfig) RateLimiter {
	if cfg.Strategy == "token_bucket" {
		return NewTokenBucketLimiter(cfg.Requests, cfg.Window)
	}
	return NewFixedWindowLimiter(cfg.Requests, cfg.Window)
}

// FixedWindowLimiter allows limit requests per key in each aligned window.
// Counters live in go-cache under "<key>:<window index>" and expire with
// the window.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration
	counts *cache.Cache
	now    func() time.Time
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		counts: cache.New(window, 2*window),
		now:    time.Now,
	}
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	index := l.now().UnixNano() / int64(l.window)
	bucket := fmt.Sprintf("%s%s:%d", constants.CachePrefixRateLimit, key, index)

	// Add fails when the bucket exists; Increment then counts atomically.
	if err := l.counts.Add(bucket, 1, l.window); err == nil {
		return l.limit >= 1
	}
	n, err := l.counts.IncrementInt(bucket, 1)
	if err != nil {
		// expired between Add and Increment: start a fresh bucket
		l.counts.Set(bucket, 1, l.window)
		return l.limit >= 1
	}
	return n <= l.limit
}

func (l *FixedWindowLimiter) Reset() {
	l.counts.Flush()
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter refills limit tokens per window per key, with a
// burst of limit. Entries idle for longer than staleAfter are dropped.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucketEntry
	rps        rate.Limit
	burst      int
	staleAfter time.Duration
	lastSweep  time.Time
}

func NewTokenBucketLimiter(limit int, window time.Duration) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets:    make(map[string]*bucketEntry),
		rps:        rate.Limit(float64(limit) / window.Seconds()),
		burst:      limit,
		staleAfter: 5 * window,
		lastSweep:  time.Now(),
	}
}

func (l *TokenBucketLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := time.Now()
	if now.Sub(l.lastSweep) > l.staleAfter {
		for k, e := range l.buckets {
			if now.Sub(e.lastSeen) > l.staleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.buckets[key]
	if !ok {
		e = &bucketEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	limiter := e.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

func (l *TokenBucketLimiter) Reset() {
	l.mu.Lock()
	l.buckets = make(map[string]*bucketEntry)
	l.mu.Unlock()
}

// ClientAddress is the remote IP without the port. Loopback gets no
// special treatment.
func ClientAddress(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimitMiddleware rejects requests over the limiter's quota with 429.
func RateLimitMiddleware(limiter RateLimiter, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := ClientAddress(r)
			if !limiter.Allow(addr) {
				endpoint := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					endpoint = rctx.RoutePattern()
				}
				metricsReg.RateLimited(endpoint)
				logging.Warn("Rate limit exceeded", "client", addr, "endpoint", endpoint)
				common.RespondError(w, http.StatusTooManyRequests, constants.ErrCodeRateLimited, constants.MsgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
