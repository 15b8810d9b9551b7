package repository

import (
	"context"

	"github.com/rpggio/focusgate/internal/domain/activity"
)

// StateRepository persists the single serialized state blob.
type StateRepository interface {
	// Load returns the last saved blob or ErrNotFound on first run.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the blob.
	Save(ctx context.Context, blob []byte) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
