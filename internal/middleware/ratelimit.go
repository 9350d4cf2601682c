package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterExpiry is how long an idle client's bucket is kept.
const limiterExpiry = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by remote IP.
//
// Put chi's RealIP middleware in front of it so r.RemoteAddr holds the
// client address rather than the proxy's.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows ratePerSecond sustained requests per client with
// bursts of up to burst.
func NewRateLimiter(ratePerSecond float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
		logger:   logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow reports whether the client identified by key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than limiterExpiry and returns how
// many it removed.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterExpiry {
			delete(rl.visitors, k)
			removed++
		}
	}
	return removed
}

// Run calls Sweep every interval until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				rl.logger.Debug("expired idle rate limit buckets", slog.Int("expired", n))
			}
		}
	}
}

// Middleware rejects over-limit requests with 429 and a JSON body.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.Allow(key) {
			rl.logger.Warn("rate limit exceeded",
				slog.String("client", key),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","message":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
