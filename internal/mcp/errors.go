package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/focus"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var locked *usage.LockedError
	switch {
	case errors.As(err, &locked):
		return &APIError{
			Code:         "APP_LOCKED",
			Message:      err.Error(),
			Details:      map[string]any{"app_id": locked.AppID, "locked_until": locked.Until},
			RecoveryHint: "Wait until the lock window ends",
		}
	case errors.Is(err, usage.ErrLocked):
		return &APIError{Code: "APP_LOCKED", Message: "app is locked", RecoveryHint: "Wait until the lock window ends"}
	case errors.Is(err, unlock.ErrNotGranted):
		return &APIError{Code: "UNLOCK_REQUIRED", Message: "app needs an active unlock grant", RecoveryHint: "Call unlock_request and wait for the grant"}
	case errors.Is(err, unlock.ErrNoRequest):
		return &APIError{Code: "NO_UNLOCK_REQUEST", Message: "no unlock request for app", RecoveryHint: "Check unlock_status"}
	case errors.Is(err, policy.ErrPermanentlyBlocked):
		return &APIError{Code: "PERMANENTLY_BLOCKED", Message: "app is permanently blocked", RecoveryHint: "Blocked apps cannot be unlocked"}
	case errors.Is(err, policy.ErrWrongKind):
		return &APIError{Code: "WRONG_POLICY", Message: err.Error(), RecoveryHint: "Check the app policy with app_status"}
	case errors.Is(err, timer.ErrTimerActive):
		return &APIError{Code: "TIMER_ACTIVE", Message: "timer is running or paused", RecoveryHint: "Reset the timer first"}
	case errors.Is(err, timer.ErrInvalidDuration):
		return &APIError{Code: "INVALID_INPUT", Message: "duration must be between 0 and 86400 seconds", RecoveryHint: "Pick a preset duration"}
	case errors.Is(err, history.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "focus session not found", RecoveryHint: "List sessions with history_list"}
	case errors.Is(err, focus.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "missing or malformed argument", RecoveryHint: "Check the tool arguments"}
	default:
		return nil
	}
}
