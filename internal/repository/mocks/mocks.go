package mocks

import (
	"context"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// StateRepository is a mock for repository.StateRepository.
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if blob, ok := args.Get(0).([]byte); ok {
		return blob, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) Save(ctx context.Context, blob []byte) error {
	args := m.Called(ctx, blob)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
