package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entry1 := &activity.ActivityEntry{
		ActivityType: activity.TypeTimerStarted,
		Summary:      "Timer started",
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		ActivityType: activity.TypeTimerCompleted,
		Summary:      "Timer completed",
		Details:      `{"target_seconds":1500}`,
		CreatedAt:    base.Add(25 * time.Minute),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry2.Details, entries[0].Details)
	require.Equal(t, base.Add(25*time.Minute), entries[0].CreatedAt)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Nil(t, entries[1].AppID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	video, games, sessionID := "video", "games", "s1"
	for i, e := range []*activity.ActivityEntry{
		{ActivityType: activity.TypeAppOpened, AppID: &video, Summary: "opened"},
		{ActivityType: activity.TypeAppLocked, AppID: &video, Summary: "locked"},
		{ActivityType: activity.TypeUnlockRequested, AppID: &games, Summary: "requested"},
		{ActivityType: activity.TypeTimerCompleted, SessionID: &sessionID, Summary: "done"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Log(ctx, e))
	}

	byApp, err := repo.List(ctx, activity.ListActivityOptions{AppID: &video})
	require.NoError(t, err)
	require.Len(t, byApp, 2)

	byType, err := repo.List(ctx, activity.ListActivityOptions{
		Types: []activity.ActivityType{activity.TypeAppLocked, activity.TypeUnlockRequested},
	})
	require.NoError(t, err)
	require.Len(t, byType, 2)
	require.Equal(t, activity.TypeUnlockRequested, byType[0].ActivityType)

	bySession, err := repo.List(ctx, activity.ListActivityOptions{SessionID: &sessionID})
	require.NoError(t, err)
	require.Len(t, bySession, 1)

	since := base.Add(2 * time.Minute)
	recent, err := repo.List(ctx, activity.ListActivityOptions{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 2)

	page, err := repo.List(ctx, activity.ListActivityOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, activity.TypeUnlockRequested, page[0].ActivityType)

	skipped, err := repo.List(ctx, activity.ListActivityOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	require.Equal(t, activity.TypeAppOpened, skipped[0].ActivityType)
}
