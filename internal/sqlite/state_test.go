package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/focusgate/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_LoadBeforeSave(t *testing.T) {
	repo := NewStateRepository(NewTestDB(t))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStateRepository_SaveReplaces(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewStateRepository(db)
	repo.now = func() time.Time { return time.UnixMilli(1000) }

	require.NoError(t, repo.Save(ctx, []byte(`{"balance":1}`)))
	require.NoError(t, repo.Save(ctx, []byte(`{"balance":2}`)))

	blob, err := repo.Load(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"balance":2}`, string(blob))

	var rows int
	var updatedAt int64
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), MAX(updated_at) FROM app_state`).Scan(&rows, &updatedAt))
	require.Equal(t, 1, rows)
	require.Equal(t, int64(1000), updatedAt)
}

func TestStateRepository_RejectsEmptyBlob(t *testing.T) {
	repo := NewStateRepository(NewTestDB(t))

	err := repo.Save(context.Background(), nil)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
