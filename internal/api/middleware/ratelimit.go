// Package middleware provides HTTP middleware components for the admin API.
package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	burstCapacityMultiplier    int     = 2
	maxKeys                    int     = 100
	defaultGlobalRPS           int     = 100
	defaultKeyRPS              int     = 50
	defaultUnAuthRPS           int     = 10
	thresholdMultiplier        float64 = 0.8
	thresholdPercentage        int     = 80
	rateLimiterCleanupInterval         = 5 * time.Minute
	rateLimiterIdleTimeout             = 1 * time.Hour
)

type (
	// RateLimiter provides rate limiting for incoming requests.
	//
	// Implementations may use in-memory token buckets (single-node deployment)
	// or distributed stores like Redis (multi-node deployment).
	RateLimiter interface {
		// Allow checks if a request should be allowed based on rate limits.
		// Returns true if allowed, false if rate limited.
		//
		// For authenticated requests, keyID identifies the admin API key.
		// For unauthenticated requests, keyID is empty string.
		Allow(keyID string) bool
	}

	// InMemoryRateLimiter implements RateLimiter using golang.org/x/time/rate.
	//
	// Provides three-tier rate limiting:
	// 1. Global limit (applied to all requests)
	// 2. Per-key limit (applied to authenticated requests)
	// 3. Unauthenticated limit (applied to requests without an admin key)
	//
	// Uses token bucket algorithm with configurable burst capacity.
	// Memory cleanup runs periodically; keys idle longer than IdleTimeout are removed.
	InMemoryRateLimiter struct {
		global          *rate.Limiter
		perKey          map[string]*keyLimiter
		unauthenticated *rate.Limiter
		mu              sync.RWMutex
		cleanupTicker   *time.Ticker
		done            chan struct{}

		// Configuration (stored for creating new key limiters and cleanup)
		keyRPS          int
		keyBurst        int
		cleanupInterval time.Duration
		idleTimeout     time.Duration
		maxKeys         int
	}

	// keyLimiter tracks rate limit state for a single admin key.
	// Includes last access time for memory cleanup.
	keyLimiter struct {
		limiter    *rate.Limiter
		lastAccess time.Time
		mu         sync.Mutex
	}
)

// NewInMemoryRateLimiter creates a new in-memory rate limiter with three-tier limits.
//
// Burst capacity is computed automatically as 2x rate unless overridden in config.
// Cleanup runs periodically to prevent unbounded memory growth.
func NewInMemoryRateLimiter(config *Config) *InMemoryRateLimiter {
	globalBurst := computeBurstCapacity(config.GlobalRPS, config.GlobalBurst)
	keyBurst := computeBurstCapacity(config.KeyRPS, config.KeyBurst)
	unauthBurst := computeBurstCapacity(config.UnAuthRPS, config.UnAuthBurst)

	rl := &InMemoryRateLimiter{
		global:          rate.NewLimiter(rate.Limit(config.GlobalRPS), globalBurst),
		perKey:          make(map[string]*keyLimiter),
		unauthenticated: rate.NewLimiter(rate.Limit(config.UnAuthRPS), unauthBurst),
		done:            make(chan struct{}),
		keyRPS:          config.KeyRPS,
		keyBurst:        keyBurst,
		cleanupInterval: config.CleanupInterval,
		idleTimeout:     config.IdleTimeout,
		maxKeys:         config.MaxKeys,
	}

	rl.startCleanup()

	return rl
}

// computeBurstCapacity computes the burst capacity based on the rate and optional override.
//
// If burstOverride is 0, computes burst automatically as 2x rate.
// If burstOverride > 0, uses the override value.
func computeBurstCapacity(rate, burstOverride int) int {
	if burstOverride > 0 {
		return burstOverride
	}

	return rate * burstCapacityMultiplier
}

// Allow checks if a request should be allowed based on rate limits.
// Implements the RateLimiter interface.
//
// Rate limiting is enforced in two steps:
// 1. Global limit (all requests)
// 2. Per-key limit (authenticated) OR unauthenticated limit
func (rl *InMemoryRateLimiter) Allow(keyID string) bool {
	if !rl.global.Allow() {
		return false
	}

	if keyID == "" {
		return rl.unauthenticated.Allow()
	}

	rl.mu.RLock()
	kl, ok := rl.perKey[keyID]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		// Double-check after acquiring write lock (avoid race)
		if kl, ok = rl.perKey[keyID]; !ok {
			kl = &keyLimiter{
				limiter:    rate.NewLimiter(rate.Limit(rl.keyRPS), rl.keyBurst),
				lastAccess: time.Now(),
			}

			rl.perKey[keyID] = kl

			// Operational monitoring: warn when approaching the max keys limit
			currentCount := len(rl.perKey)
			threshold := int(float64(rl.maxKeys) * thresholdMultiplier)

			if currentCount >= threshold {
				slog.Warn("rate limiter approaching max keys limit",
					"current_keys", currentCount,
					"max_keys", rl.maxKeys,
					"threshold_percent", thresholdPercentage,
				)
			}
		}

		rl.mu.Unlock()
	}

	kl.mu.Lock()
	kl.lastAccess = time.Now()
	kl.mu.Unlock()

	return kl.limiter.Allow()
}

// Close stops the cleanup goroutine and releases resources.
// Must be called when the InMemoryRateLimiter is no longer needed.
//
// Note: Close() is not part of the RateLimiter interface to allow
// implementations that don't require cleanup. Use type assertion if
// cleanup is needed:
//
//	if closer, ok := limiter.(io.Closer); ok {
//	    closer.Close()
//	}
func (rl *InMemoryRateLimiter) Close() error {
	if rl.cleanupTicker != nil {
		rl.cleanupTicker.Stop()
	}

	close(rl.done)

	return nil
}

// startCleanup starts a background goroutine that periodically removes
// stale key limiters to prevent memory leaks.
func (rl *InMemoryRateLimiter) startCleanup() {
	cleanupInterval := rl.cleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = rateLimiterCleanupInterval
	}

	rl.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-rl.cleanupTicker.C:
				rl.cleanup()
			case <-rl.done:
				return
			}
		}
	}()
}

// cleanup removes key limiters that haven't been accessed recently.
func (rl *InMemoryRateLimiter) cleanup() {
	idleTimeout := rl.idleTimeout
	if idleTimeout == 0 {
		idleTimeout = rateLimiterIdleTimeout
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for keyID, kl := range rl.perKey {
		kl.mu.Lock()
		lastAccess := kl.lastAccess
		kl.mu.Unlock()

		if now.Sub(lastAccess) > idleTimeout {
			delete(rl.perKey, keyID)
		}
	}
}

// RateLimit returns a middleware that enforces rate limits on incoming requests.
//
// When a request exceeds the rate limit, the middleware returns a 429
// (Too Many Requests) response with RFC 7807 error format.
//
// The middleware must be placed after authentication middleware in the chain
// to access AdminContext for per-key rate limiting.
func RateLimit(limiter RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract key ID from context (set by authentication middleware).
			// Empty string means unauthenticated rate limiting applies.
			keyID := ""
			if adminCtx, ok := GetAdminContext(r.Context()); ok {
				keyID = adminCtx.KeyID
			}

			if !limiter.Allow(keyID) {
				correlationID := GetCorrelationID(r.Context())

				detail := "Rate limit exceeded. Please retry after some time."
				if err := writeRFC7807Error(w, r, http.StatusTooManyRequests, detail, correlationID); err != nil {
					logger.Error("failed to write response with RFC 7807 error format",
						slog.String("correlation_id", correlationID),
						slog.String("path", r.URL.Path),
						slog.String("detail", detail),
						slog.String("error", err.Error()),
					)

					http.Error(w, detail, http.StatusTooManyRequests)
				}

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
