package mcp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/focus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	until := time.Date(2026, 3, 1, 10, 35, 0, 0, time.UTC)

	cases := []struct {
		err  error
		code string
	}{
		{&usage.LockedError{AppID: "video", Until: until}, "APP_LOCKED"},
		{unlock.ErrNotGranted, "UNLOCK_REQUIRED"},
		{unlock.ErrNoRequest, "NO_UNLOCK_REQUEST"},
		{policy.ErrPermanentlyBlocked, "PERMANENTLY_BLOCKED"},
		{fmt.Errorf("%w: request apps only", policy.ErrWrongKind), "WRONG_POLICY"},
		{timer.ErrTimerActive, "TIMER_ACTIVE"},
		{timer.ErrInvalidDuration, "INVALID_INPUT"},
		{history.ErrSessionNotFound, "SESSION_NOT_FOUND"},
		{focus.ErrInvalidInput, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			apiErr := MapError(tc.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}

	assert.Nil(t, MapError(nil))
	assert.Nil(t, MapError(errors.New("disk full")))
}

func TestMapError_LockedDetails(t *testing.T) {
	until := time.Date(2026, 3, 1, 10, 35, 0, 0, time.UTC)
	apiErr := MapError(fmt.Errorf("open: %w", &usage.LockedError{AppID: "video", Until: until}))
	require.NotNil(t, apiErr)
	assert.Equal(t, map[string]any{"app_id": "video", "locked_until": until}, apiErr.Details)
}

func TestToolError_UnmappedFailsCall(t *testing.T) {
	res, _, err := toolError(errors.New("disk full"))
	assert.Nil(t, res)
	assert.EqualError(t, err, "disk full")

	res, _, err = toolError(unlock.ErrNotGranted)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
}
