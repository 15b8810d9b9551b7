// Package timer implements the countdown/stopwatch focus timer as pure
// transitions over State. Callers own the State and the clock; nothing here
// reads the wall clock or keeps hidden state.
package timer

import "time"

// Idle returns an idle timer with the given target duration.
func Idle(totalSeconds int) State {
	return State{TotalSeconds: totalSeconds}
}

// SetDuration changes the target duration. Only allowed while Idle.
func SetDuration(s State, seconds int) (State, error) {
	if seconds < 0 || seconds > MaxDurationSeconds {
		return s, ErrInvalidDuration
	}
	if s.Phase() != PhaseIdle {
		return s, ErrTimerActive
	}
	return Idle(seconds), nil
}

// Start moves Idle to Running. The returned bool is false when the
// transition does not apply.
func Start(s State, now time.Time) (State, bool) {
	if s.Phase() != PhaseIdle {
		return s, false
	}
	next := Idle(s.TotalSeconds)
	next.StartedAt = timePtr(now)
	if next.Mode() == ModeCountdown {
		next.EndAt = timePtr(now.Add(time.Duration(s.TotalSeconds) * time.Second))
	}
	return next, true
}

// Pause moves Running to Paused, freezing the displayed seconds.
func Pause(s State, now time.Time) (State, bool) {
	if s.Phase() != PhaseRunning {
		return s, false
	}
	frozen := Display(s, now)
	next := s
	next.EndAt = nil
	next.PausedRemaining = &frozen
	next.PausedAt = timePtr(now)
	next.BreakCount++
	return next, true
}

// Resume moves Paused back to Running. Countdowns get a fresh absolute end
// instant; stopwatches fold the pause into BreakMs.
func Resume(s State, now time.Time) (State, bool) {
	if s.Phase() != PhasePaused {
		return s, false
	}
	next := s
	next.BreakMs += pauseMs(s, now)
	if s.Mode() == ModeCountdown {
		next.EndAt = timePtr(now.Add(time.Duration(*s.PausedRemaining) * time.Second))
	}
	next.PausedRemaining = nil
	next.PausedAt = nil
	return next, true
}

// Reset returns the timer to Idle. When the abandoned run accrued active
// time, a canceled Run summary is returned for the recorder.
func Reset(s State, now time.Time) (State, *Run) {
	if s.Phase() == PhaseIdle {
		return s, nil
	}
	idle := Idle(s.TotalSeconds)
	if s.StartedAt == nil {
		return idle, nil
	}

	breakMs := s.BreakMs + pauseMs(s, now)
	active := now.Sub(*s.StartedAt) - time.Duration(breakMs)*time.Millisecond
	if active <= 0 {
		return idle, nil
	}
	return idle, &Run{
		Outcome:       OutcomeCanceled,
		StartedAt:     *s.StartedAt,
		EndedAt:       now,
		TargetSeconds: s.TotalSeconds,
		BreakSeconds:  int(breakMs / 1000),
		BreakCount:    s.BreakCount,
	}
}

// Tick completes a running countdown whose end instant has passed. At most
// one Run is returned per run because the returned state is Idle.
func Tick(s State, now time.Time) (State, *Run) {
	if s.EndAt == nil || s.PausedRemaining != nil || now.Before(*s.EndAt) {
		return s, nil
	}
	run := &Run{
		Outcome:       OutcomeCompleted,
		EndedAt:       *s.EndAt,
		TargetSeconds: s.TotalSeconds,
		BreakSeconds:  int(s.BreakMs / 1000),
		BreakCount:    s.BreakCount,
	}
	if s.StartedAt != nil {
		run.StartedAt = *s.StartedAt
	} else {
		run.StartedAt = s.EndAt.Add(-time.Duration(s.TotalSeconds) * time.Second)
	}
	return Idle(s.TotalSeconds), run
}

// Display derives the seconds shown to the user. It has no side effects.
func Display(s State, now time.Time) int {
	switch s.Phase() {
	case PhasePaused:
		return *s.PausedRemaining
	case PhaseRunning:
		if s.Mode() == ModeStopwatch {
			elapsed := now.Sub(*s.StartedAt) - time.Duration(s.BreakMs)*time.Millisecond
			if elapsed < 0 {
				return 0
			}
			return int(elapsed / time.Second)
		}
		return ceilSeconds(s.EndAt.Sub(now))
	default:
		return s.TotalSeconds
	}
}

// ViewOf builds the presentation view at now.
func ViewOf(s State, now time.Time) View {
	return View{
		Phase:          s.Phase(),
		Mode:           s.Mode(),
		DisplaySeconds: Display(s, now),
		TotalSeconds:   s.TotalSeconds,
		StartedAt:      s.StartedAt,
		EndAt:          s.EndAt,
		BreakCount:     s.BreakCount,
	}
}

// Valid reports whether s satisfies the phase invariants.
func Valid(s State) bool {
	if s.TotalSeconds < 0 || s.TotalSeconds > MaxDurationSeconds || s.BreakCount < 0 || s.BreakMs < 0 {
		return false
	}
	if s.EndAt != nil && s.PausedRemaining != nil {
		return false
	}
	if s.PausedRemaining != nil && (*s.PausedRemaining < 0 || s.PausedAt == nil) {
		return false
	}
	if s.PausedAt != nil && s.PausedRemaining == nil {
		return false
	}
	if s.EndAt != nil && s.Mode() == ModeStopwatch {
		return false
	}
	if s.Phase() != PhaseIdle && s.StartedAt == nil {
		return false
	}
	if s.Phase() == PhaseIdle && (s.StartedAt != nil || s.PausedAt != nil) {
		return false
	}
	return true
}

func pauseMs(s State, now time.Time) int64 {
	if s.PausedAt == nil {
		return 0
	}
	ms := now.Sub(*s.PausedAt).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
