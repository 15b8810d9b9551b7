package focus

import (
	"time"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
)

// EventType names a notification for the presentation layer.
type EventType string

const (
	EventTimerCompleted EventType = "timer_completed"
	EventTimerCanceled  EventType = "timer_canceled"
	EventAppLocked      EventType = "app_locked"
	EventUnlockGranted  EventType = "unlock_granted"
)

// Event is emitted once per committed transition.
type Event struct {
	Type    EventType             `json:"type"`
	At      time.Time             `json:"at"`
	AppID   string                `json:"app_id,omitempty"`
	Until   *time.Time            `json:"until,omitempty"`
	Session *history.FocusSession `json:"session,omitempty"`
}

// TimerResult reports a timer operation.
type TimerResult struct {
	View    timer.View            `json:"timer"`
	Changed bool                  `json:"changed"`
	Session *history.FocusSession `json:"session,omitempty"`
}

// AppView is the gate state of one app.
type AppView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Policy     policy.Kind     `json:"policy"`
	Accessible bool            `json:"accessible"`
	Limits     usage.AppConfig `json:"limits"`
	Usage      *usage.Status   `json:"usage,omitempty"`
	Unlock     *unlock.Status  `json:"unlock,omitempty"`
}

// LimitsResult reports the limits stored by SetAppLimits. Adjusted
// describes any clamping that was applied.
type LimitsResult struct {
	AppID    string          `json:"app_id"`
	Limits   usage.AppConfig `json:"limits"`
	Adjusted string          `json:"adjusted,omitempty"`
}
