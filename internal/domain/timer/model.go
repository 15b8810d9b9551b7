package timer

import "time"

// Mode is the counting direction of the timer.
type Mode string

const (
	ModeCountdown Mode = "countdown"
	ModeStopwatch Mode = "stopwatch"
)

// Phase is the lifecycle position of the timer.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// MaxDurationSeconds bounds the configurable target duration.
const MaxDurationSeconds = 24 * 60 * 60

// State is the focus timer snapshot. Values are never mutated in place;
// every transition returns a new State.
type State struct {
	TotalSeconds    int        `json:"total_seconds"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	PausedRemaining *int       `json:"paused_remaining,omitempty"`

	// Run bookkeeping, set while Running or Paused.
	StartedAt  *time.Time `json:"started_at,omitempty"`
	PausedAt   *time.Time `json:"paused_at,omitempty"`
	BreakCount int        `json:"break_count"`
	BreakMs    int64      `json:"break_ms"`
}

// Mode reports Stopwatch when no target duration is configured.
func (s State) Mode() Mode {
	if s.TotalSeconds == 0 {
		return ModeStopwatch
	}
	return ModeCountdown
}

// Phase derives Idle, Running or Paused from which fields are set.
func (s State) Phase() Phase {
	switch {
	case s.PausedRemaining != nil:
		return PhasePaused
	case s.EndAt != nil:
		return PhaseRunning
	case s.StartedAt != nil && s.Mode() == ModeStopwatch:
		return PhaseRunning
	default:
		return PhaseIdle
	}
}

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCanceled  Outcome = "canceled"
)

// Run summarizes a finished run for the session recorder.
type Run struct {
	Outcome       Outcome
	StartedAt     time.Time
	EndedAt       time.Time
	TargetSeconds int
	BreakSeconds  int
	BreakCount    int
}

// View is the derived display state consumed by the presentation layer.
type View struct {
	Phase          Phase      `json:"phase"`
	Mode           Mode       `json:"mode"`
	DisplaySeconds int        `json:"display_seconds"`
	TotalSeconds   int        `json:"total_seconds"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	BreakCount     int        `json:"break_count"`
}
