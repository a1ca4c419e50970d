package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opencode-ai/themekit/internal/store"
)

// StateRepository persists theme records in the kv_state table.
// It satisfies store.Storage.
type StateRepository struct {
	db      *DB
	timeout time.Duration
}

var _ store.Storage = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository.
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db, timeout: 5 * time.Second}
}

func (r *StateRepository) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Load returns the record stored under key or store.ErrNotFound.
func (r *StateRepository) Load(key string) ([]byte, error) {
	ctx, cancel := r.withTimeout()
	defer cancel()
	return r.LoadContext(ctx, key)
}

// LoadContext is Load with an explicit context.
func (r *StateRepository) LoadContext(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return value, nil
}

// Save replaces the record stored under key.
func (r *StateRepository) Save(key string, data []byte) error {
	ctx, cancel := r.withTimeout()
	defer cancel()
	return r.SaveContext(ctx, key, data)
}

// SaveContext is Save with an explicit context.
func (r *StateRepository) SaveContext(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_state (key, value, updated_at, revision) VALUES (?, ?, ?, 1)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			revision = kv_state.revision + 1
	`, key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// Remove deletes the record under key. Missing keys are not an error.
func (r *StateRepository) Remove(key string) error {
	ctx, cancel := r.withTimeout()
	defer cancel()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove state %q: %w", key, err)
	}
	return nil
}

// Revision returns how many times key has been written, or 0 if absent.
func (r *StateRepository) Revision(ctx context.Context, key string) (int, error) {
	var revision int
	err := r.db.QueryRowContext(ctx, `SELECT revision FROM kv_state WHERE key = ?`, key).Scan(&revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read revision for %q: %w", key, err)
	}
	return revision, nil
}
