package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeTimerStarted    ActivityType = "timer_started"
	TypeTimerPaused     ActivityType = "timer_paused"
	TypeTimerResumed    ActivityType = "timer_resumed"
	TypeTimerCompleted  ActivityType = "timer_completed"
	TypeTimerCanceled   ActivityType = "timer_canceled"
	TypeAppOpened       ActivityType = "app_opened"
	TypeAppClosed       ActivityType = "app_closed"
	TypeAppLocked       ActivityType = "app_locked"
	TypeUnlockRequested ActivityType = "unlock_requested"
	TypeUnlockGranted   ActivityType = "unlock_granted"
	TypeUnlockCanceled  ActivityType = "unlock_canceled"
	TypeSessionDeleted  ActivityType = "session_deleted"
	TypeStateRecovered  ActivityType = "state_recovered"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"type"`
	AppID        *string      `json:"app_id,omitempty"`
	SessionID    *string      `json:"session_id,omitempty"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
