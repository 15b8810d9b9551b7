package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/focusgate/internal/repository"
)

// StateRepository implements repository.StateRepository for SQLite
type StateRepository struct {
	db  *DB
	now func() time.Time
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db, now: time.Now}
}

// Load returns the stored blob, or repository.ErrNotFound before the first save.
func (r *StateRepository) Load(ctx context.Context) ([]byte, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, `SELECT blob FROM app_state WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return []byte(blob), nil
}

// Save replaces the stored blob.
func (r *StateRepository) Save(ctx context.Context, blob []byte) error {
	if len(blob) == 0 {
		return repository.ErrInvalidInput
	}

	query := `
		INSERT INTO app_state (id, blob, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, string(blob), r.now().UnixMilli()); err != nil {
		if isBusy(err) {
			return fmt.Errorf("failed to save state: database busy: %w", err)
		}
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
