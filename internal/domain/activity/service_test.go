package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	appID := "video"
	entry := &activity.ActivityEntry{
		ActivityType: activity.TypeAppLocked,
		AppID:        &appID,
		Summary:      "video locked",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListActivityOptions{Limit: activity.DefaultListLimit}).Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_RejectsEmptyEntry(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(context.Background(), &activity.ActivityEntry{}), activity.ErrInvalidInput)
}

func TestActivityService_WrapsRepositoryError(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("Log", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	err := svc.LogActivity(context.Background(), &activity.ActivityEntry{ActivityType: activity.TypeTimerStarted})
	require.ErrorContains(t, err, "logging activity: disk full")
}
