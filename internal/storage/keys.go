package storage

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Admin key format constants.
	randomBytesSize = 32
	apiKeyLength    = 73 // "vajra_ak_" + 64 hex chars
	prefixLen       = 13 // Show "vajra_ak_1234"
	suffixLen       = 4  // Show last 4 chars

	keyPrefix = "vajra_ak_"
)

var (
	// ErrKeyAlreadyExists is returned when attempting to add a key that already exists.
	ErrKeyAlreadyExists = errors.New("admin API key already exists")
	// ErrKeyNotFound is returned when attempting to operate on a non-existent key.
	ErrKeyNotFound = errors.New("admin API key not found")
	// ErrKeyNil is returned when a nil admin API key is provided.
	ErrKeyNil = errors.New("admin API key cannot be nil")
	// ErrKeyStringEmpty is returned when key string is empty during parsing.
	ErrKeyStringEmpty = errors.New("key string cannot be empty")
	// ErrInvalidKeyFormat is returned when an admin API key doesn't match the expected format.
	ErrInvalidKeyFormat = errors.New("invalid admin API key format")
	// ErrInvalidKeyLength is returned when an admin API key length is incorrect.
	ErrInvalidKeyLength = errors.New("invalid admin API key length")
)

// Key represents an admin API key guarding the dashboard endpoints.
type Key struct {
	ID        string     `json:"id"`
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Active    bool       `json:"active"`
}

// KeyStore defines the interface for admin API key storage and retrieval.
type KeyStore interface {
	// FindByKey retrieves an admin API key by its key value
	FindByKey(ctx context.Context, key string) (*Key, bool)
	// Add stores a new admin API key
	Add(ctx context.Context, apiKey *Key) error
	// Update modifies an existing admin API key
	Update(ctx context.Context, apiKey *Key) error
	// Delete removes an admin API key
	Delete(ctx context.Context, keyID string) error
	// List returns all active admin API keys
	List(ctx context.Context) ([]*Key, error)
}

// ValidateKey performs constant-time comparison of the provided key against this key.
func (ak *Key) ValidateKey(providedKey string) bool {
	if providedKey == "" || ak.Key == "" {
		return false
	}

	if !ak.Active {
		return false
	}

	if ak.ExpiresAt != nil && time.Now().After(*ak.ExpiresAt) {
		return false
	}

	return SecureCompare(ak.Key, providedKey)
}

// SecureCompare performs constant-time comparison of two strings to prevent timing attacks.
func SecureCompare(a, b string) bool {
	// If lengths differ, still perform comparison to prevent timing attacks
	// but ensure we return false
	if len(a) != len(b) {
		dummy := make([]byte, len(a))
		subtle.ConstantTimeCompare([]byte(a), dummy)

		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MaskKey masks an admin API key for secure logging by showing only the
// prefix and suffix. Keys of any other length are masked completely.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}

	keyLen := len(key)

	if keyLen == apiKeyLength {
		maskedLen := keyLen - prefixLen - suffixLen

		return key[:prefixLen] + strings.Repeat("*", maskedLen) + key[keyLen-suffixLen:]
	}

	return strings.Repeat("*", keyLen)
}

// GenerateAPIKey creates a new secure admin API key.
func GenerateAPIKey() (string, error) {
	// Generate 32 random bytes (256 bits)
	randomBytes := make([]byte, randomBytesSize)

	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return keyPrefix + hex.EncodeToString(randomBytes), nil
}

// ParseAPIKey extracts the admin API key from various header formats.
func ParseAPIKey(keyString string) (string, error) {
	if keyString == "" {
		return "", ErrKeyStringEmpty
	}

	// Remove "Bearer " prefix if present
	keyString = strings.TrimPrefix(keyString, "Bearer ")

	if !strings.HasPrefix(keyString, keyPrefix) {
		return "", ErrInvalidKeyFormat
	}

	if len(keyString) != apiKeyLength {
		return "", ErrInvalidKeyLength
	}

	return keyString, nil
}
