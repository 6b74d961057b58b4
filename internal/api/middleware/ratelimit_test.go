package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRateLimiter(t *testing.T, cfg *Config) *InMemoryRateLimiter {
	t.Helper()

	rl := NewInMemoryRateLimiter(cfg)
	t.Cleanup(func() { _ = rl.Close() })

	return rl
}

func TestRateLimiterGlobalLimit(t *testing.T) {
	rl := newTestRateLimiter(t, &Config{
		GlobalRPS:   1,
		GlobalBurst: 2,
		KeyRPS:      100,
		UnAuthRPS:   100,
	})

	if !rl.Allow("key-1") {
		t.Error("first request should be allowed")
	}

	if !rl.Allow("key-2") {
		t.Error("second request should be allowed (burst)")
	}

	if rl.Allow("key-3") {
		t.Error("third request should exceed global burst")
	}
}

func TestRateLimiterPerKeyLimit(t *testing.T) {
	rl := newTestRateLimiter(t, &Config{
		GlobalRPS: 1000,
		KeyRPS:    1,
		KeyBurst:  1,
		UnAuthRPS: 1000,
	})

	if !rl.Allow("key-1") {
		t.Error("first request for key-1 should be allowed")
	}

	if rl.Allow("key-1") {
		t.Error("second request for key-1 should be limited")
	}

	// A different key has its own bucket.
	if !rl.Allow("key-2") {
		t.Error("first request for key-2 should be allowed")
	}
}

func TestRateLimiterUnauthenticatedLimit(t *testing.T) {
	rl := newTestRateLimiter(t, &Config{
		GlobalRPS:   1000,
		KeyRPS:      1000,
		UnAuthRPS:   1,
		UnAuthBurst: 1,
	})

	if !rl.Allow("") {
		t.Error("first unauthenticated request should be allowed")
	}

	if rl.Allow("") {
		t.Error("second unauthenticated request should be limited")
	}
}

func TestRateLimiterCleanupRemovesIdleKeys(t *testing.T) {
	rl := newTestRateLimiter(t, &Config{
		GlobalRPS:   1000,
		KeyRPS:      10,
		UnAuthRPS:   10,
		IdleTimeout: time.Millisecond,
	})

	rl.Allow("key-1")

	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	rl.mu.RLock()
	_, exists := rl.perKey["key-1"]
	rl.mu.RUnlock()

	if exists {
		t.Error("expected idle key limiter to be removed by cleanup")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := newTestRateLimiter(t, &Config{
		GlobalRPS:   1000,
		KeyRPS:      1000,
		UnAuthRPS:   1,
		UnAuthBurst: 1,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(rl, logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/overview", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json content type, got %q", ct)
	}
}

func TestComputeBurstCapacity(t *testing.T) {
	if got := computeBurstCapacity(100, 0); got != 200 {
		t.Errorf("expected auto-computed burst 200, got %d", got)
	}

	if got := computeBurstCapacity(100, 500); got != 500 {
		t.Errorf("expected override burst 500, got %d", got)
	}
}
