// Package middleware provides HTTP middleware components for the admin API.
package middleware

import (
	"time"

	"github.com/vajra-io/vajra/internal/config"
)

// Config holds rate limiter configuration.
//
// Rate limits specify requests per second (RPS) for three tiers:
//   - Global: applied to all requests
//   - Per-key: applied to authenticated requests
//   - Unauthenticated: applied to requests without an admin key
//
// Burst capacity allows temporary bursts above sustained rate.
// If burst fields are 0, they are computed automatically as 2x rate.
type Config struct {
	// Rate limits (requests per second)
	GlobalRPS int // Default: 100
	KeyRPS    int // Default: 50
	UnAuthRPS int // Default: 10

	// Optional burst capacity overrides (0 = computed as 2x rate)
	GlobalBurst int
	KeyBurst    int
	UnAuthBurst int

	// Memory cleanup configuration
	CleanupInterval time.Duration // Default: 5 minutes
	IdleTimeout     time.Duration // Default: 1 hour
	MaxKeys         int           // Default: 100
}

// LoadConfig loads middleware config from environment variables with fallback to defaults.
func LoadConfig() *Config {
	return &Config{
		GlobalRPS: config.GetEnvInt("VAJRA_GLOBAL_RPS", defaultGlobalRPS),
		KeyRPS:    config.GetEnvInt("VAJRA_KEY_RPS", defaultKeyRPS),
		UnAuthRPS: config.GetEnvInt("VAJRA_UNAUTH_RPS", defaultUnAuthRPS),

		GlobalBurst: config.GetEnvInt("VAJRA_GLOBAL_BURST", 0),
		KeyBurst:    config.GetEnvInt("VAJRA_KEY_BURST", 0),
		UnAuthBurst: config.GetEnvInt("VAJRA_UNAUTH_BURST", 0),

		CleanupInterval: config.GetEnvDuration(
			"VAJRA_RATE_LIMIT_CLEANUP_INTERVAL", rateLimiterCleanupInterval,
		),
		IdleTimeout: config.GetEnvDuration("VAJRA_RATE_LIMIT_IDLE_TIMEOUT", rateLimiterIdleTimeout),
		MaxKeys:     config.GetEnvInt("VAJRA_RATE_LIMIT_MAX_KEYS", maxKeys),
	}
}
