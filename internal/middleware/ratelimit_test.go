package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2, quietLogger())
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "burst of 2 is used up")
	assert.True(t, rl.Allow("5.6.7.8"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "one token refills per second")
}

func TestRateLimiter_SweepForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, quietLogger())
	rl.now = func() time.Time { return now }

	rl.Allow("1.2.3.4")
	now = now.Add(limiterExpiry + time.Second)
	rl.Allow("5.6.7.8")

	rl.mu.Lock()
	assert.Len(t, rl.visitors, 2, "Allow leaves expiry to Sweep")
	rl.mu.Unlock()

	assert.Equal(t, 1, rl.Sweep())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "5.6.7.8")
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(1, 1, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, quietLogger())
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate_limited")
}
