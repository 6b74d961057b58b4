package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/vajra-io/vajra/internal/config"
)

const (
	keyCreated = "created"
	keyUpdated = "updated"
	keyDeleted = "deleted"
)

// Compile-time interface assertion.
var _ KeyStore = (*PersistentKeyStore)(nil)

// PersistentKeyStore implements KeyStore with a PostgreSQL backend. Keys are
// stored as bcrypt hashes; the plaintext never touches the database.
type PersistentKeyStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPersistentKeyStore creates a PostgreSQL-backed admin key store.
// Returns ErrNoDatabaseConnection if conn is nil.
func NewPersistentKeyStore(conn *Connection) (*PersistentKeyStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	return &PersistentKeyStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}, nil
}

// Close closes the database connection pool gracefully.
// This method is safe to call multiple times.
func (s *PersistentKeyStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}

// FindByKey retrieves an admin API key by its key value using bcrypt hash
// comparison. Queries all active keys and compares hashes in-memory, which is
// acceptable for the small admin key population.
// Returns (nil, false) if key not found or invalid.
func (s *PersistentKeyStore) FindByKey(ctx context.Context, key string) (*Key, bool) {
	if key == "" {
		return nil, false
	}

	query := `
		SELECT id, key_hash, name, created_at, expires_at, active
		FROM admin_api_keys
		WHERE active = TRUE
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, false
	}

	defer func() {
		_ = rows.Close()
	}()

	var keyFound *Key

	// Iterate through active keys and compare hashes
	for rows.Next() {
		var apiKey Key

		err := rows.Scan(
			&apiKey.ID,
			&apiKey.Key, // This is actually the hash, used for comparison only
			&apiKey.Name,
			&apiKey.CreatedAt,
			&apiKey.ExpiresAt,
			&apiKey.Active,
		)
		if err != nil {
			continue
		}

		if CompareAPIKeyHash(apiKey.Key, key) {
			// Found a match. Mask the hash so neither it nor the plaintext leaks.
			apiKey.Key = MaskKey(apiKey.Key)
			keyFound = &apiKey

			break
		}
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("failed to find admin key", slog.String("error", err.Error()))

		return nil, false
	}

	return keyFound, keyFound != nil
}

// Add stores a new admin API key with bcrypt hashing and audit logging.
func (s *PersistentKeyStore) Add(ctx context.Context, apiKey *Key) error {
	if apiKey == nil { // pragma: allowlist secret
		return ErrKeyNil
	}

	// Bcrypt produces a different hash for the same input every time, so
	// duplicate detection has to go through FindByKey.
	if existing, found := s.FindByKey(ctx, apiKey.Key); found && existing != nil {
		return ErrKeyAlreadyExists
	}

	keyHash, err := HashAPIKey(apiKey.Key)
	if err != nil {
		return fmt.Errorf("failed to hash API key: %w", err)
	}

	query := `
		INSERT INTO admin_api_keys (id, key_hash, name, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.conn.ExecContext(
		ctx,
		query,
		apiKey.ID,
		keyHash,
		apiKey.Name,
		apiKey.CreatedAt,
		apiKey.ExpiresAt,
		apiKey.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert API key: %w", err)
	}

	// Audit logging is best-effort; a failure is logged but does not fail the operation.
	if err := s.logAudit(ctx, keyCreated, apiKey, nil); err != nil {
		s.logger.Error(
			"failed to write an audit log entry for admin key operation",
			slog.String("operation", keyCreated),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// Update modifies an existing admin API key. Updates name, active status, and
// expiration. The key hash itself cannot be updated.
func (s *PersistentKeyStore) Update(ctx context.Context, apiKey *Key) error {
	if apiKey == nil { // pragma: allowlist secret
		return ErrKeyNil
	}

	if apiKey.ID == "" {
		return ErrKeyNotFound
	}

	query := `
		UPDATE admin_api_keys
		SET name = $1, active = $2, expires_at = $3, updated_at = now()
		WHERE id = $4
	`

	result, err := s.conn.ExecContext(ctx, query, apiKey.Name, apiKey.Active, apiKey.ExpiresAt, apiKey.ID)
	if err != nil {
		return fmt.Errorf("failed to update API key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrKeyNotFound
	}

	if err := s.logAudit(ctx, keyUpdated, apiKey, nil); err != nil {
		s.logger.Error(
			"failed to write an audit log entry for admin key operation",
			slog.String("operation", keyUpdated),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// Delete performs a soft delete on an admin API key by setting active=FALSE.
// The row is kept for the audit trail.
func (s *PersistentKeyStore) Delete(ctx context.Context, keyID string) error {
	if keyID == "" {
		return ErrKeyNotFound
	}

	query := `
		UPDATE admin_api_keys
		SET active = FALSE, updated_at = now()
		WHERE id = $1
	`

	result, err := s.conn.ExecContext(ctx, query, keyID)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrKeyNotFound
	}

	apiKey := &Key{ID: keyID}

	if err := s.logAudit(ctx, keyDeleted, apiKey, nil); err != nil {
		s.logger.Error(
			"failed to write an audit log entry for admin key operation",
			slog.String("operation", keyDeleted),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// List returns all active admin API keys with masked hashes.
func (s *PersistentKeyStore) List(ctx context.Context) ([]*Key, error) {
	query := `
		SELECT id, key_hash, name, created_at, expires_at, active
		FROM admin_api_keys
		WHERE active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query API keys: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	keys := []*Key{}

	for rows.Next() {
		var apiKey Key

		err := rows.Scan(
			&apiKey.ID,
			&apiKey.Key,
			&apiKey.Name,
			&apiKey.CreatedAt,
			&apiKey.ExpiresAt,
			&apiKey.Active,
		)
		if err != nil {
			continue
		}

		// Mask the key hash for security
		apiKey.Key = MaskKey(apiKey.Key)

		keys = append(keys, &apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return keys, nil
}

// logAudit writes an audit log entry for admin key operations.
func (s *PersistentKeyStore) logAudit(
	ctx context.Context,
	operation string,
	apiKey *Key,
	metadata map[string]any,
) error {
	maskedKey := MaskKey(apiKey.Key)

	var (
		metadataJSON []byte
		err          error
	)

	if metadata == nil {
		metadataJSON = []byte("{}")
	} else {
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO admin_api_key_audit_log (api_key_id, operation, masked_key, metadata)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.conn.ExecContext(ctx, query, apiKey.ID, operation, maskedKey, metadataJSON)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
