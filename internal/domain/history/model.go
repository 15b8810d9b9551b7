package history

import "time"

// Status records how a focus session ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// DefaultMinCountableSeconds is the floor below which sessions are kept but
// excluded from aggregate statistics.
const DefaultMinCountableSeconds = 60

// FocusSession is an immutable history entry.
type FocusSession struct {
	ID                    string    `json:"id"`
	StartTime             time.Time `json:"start_time"`
	EndTime               time.Time `json:"end_time"`
	TargetDurationSeconds int       `json:"target_duration_seconds"`
	ActualFocusSeconds    int       `json:"actual_focus_seconds"`
	TotalBreakSeconds     int       `json:"total_break_seconds"`
	BreakCount            int       `json:"break_count"`
	Status                Status    `json:"status"`
	IsCounted             bool      `json:"is_counted"`
}

// BreakStats summarizes pauses taken during a run.
type BreakStats struct {
	TotalSeconds int
	Count        int
}

// Stats are aggregate figures derived on demand from the history.
type Stats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedCount    int     `json:"completed_count"`
	CanceledCount     int     `json:"canceled_count"`
	UncountedSessions int     `json:"uncounted_sessions"`
	TotalFocusSeconds int     `json:"total_focus_seconds"`
	FocusHours        float64 `json:"focus_hours"`
	SuccessRate       float64 `json:"success_rate"`
}

// ListOptions filters and pages the history, newest first.
type ListOptions struct {
	Status *Status
	Limit  int
	Offset int
}
