package focus

import (
	"context"
	"time"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
)

// Timer returns the timer view at the current instant.
func (s *Service) Timer(ctx context.Context) (timer.View, error) {
	var view timer.View
	err := s.mutate(ctx, func(t *txn) error {
		view = timer.ViewOf(t.Timer, t.now)
		return nil
	})
	return view, err
}

// SetDuration configures the countdown length; zero selects the stopwatch.
// It is rejected while a run is in progress.
func (s *Service) SetDuration(ctx context.Context, seconds int) (TimerResult, error) {
	var res TimerResult
	err := s.mutate(ctx, func(t *txn) error {
		next, err := timer.SetDuration(t.Timer, seconds)
		if err != nil {
			return err
		}
		res.Changed = next.TotalSeconds != t.Timer.TotalSeconds
		t.Timer = next
		t.changed = t.changed || res.Changed
		res.View = timer.ViewOf(t.Timer, t.now)
		return nil
	})
	return res, err
}

// Start begins a run from Idle.
func (s *Service) Start(ctx context.Context) (TimerResult, error) {
	return s.transition(ctx, timer.Start, activity.TypeTimerStarted, "Timer started")
}

// Pause freezes a running timer.
func (s *Service) Pause(ctx context.Context) (TimerResult, error) {
	return s.transition(ctx, timer.Pause, activity.TypeTimerPaused, "Timer paused")
}

// Resume continues a paused timer.
func (s *Service) Resume(ctx context.Context) (TimerResult, error) {
	return s.transition(ctx, timer.Resume, activity.TypeTimerResumed, "Timer resumed")
}

// Reset abandons the current run. A run that accrued active time is
// recorded as a canceled session before Reset returns.
func (s *Service) Reset(ctx context.Context) (TimerResult, error) {
	var res TimerResult
	err := s.mutate(ctx, func(t *txn) error {
		if t.Timer.Phase() == timer.PhaseIdle {
			res.View = timer.ViewOf(t.Timer, t.now)
			return nil
		}
		next, run := timer.Reset(t.Timer, t.now)
		t.Timer = next
		t.changed = true
		res.Changed = true
		if run != nil {
			session := s.finishRun(t, *run)
			res.Session = &session
		}
		res.View = timer.ViewOf(t.Timer, t.now)
		return nil
	})
	return res, err
}

func (s *Service) transition(
	ctx context.Context,
	step func(timer.State, time.Time) (timer.State, bool),
	typ activity.ActivityType,
	summary string,
) (TimerResult, error) {
	var res TimerResult
	err := s.mutate(ctx, func(t *txn) error {
		next, ok := step(t.Timer, t.now)
		if ok {
			t.Timer = next
			t.changed = true
			t.log(activity.ActivityEntry{
				ActivityType: typ,
				Summary:      summary,
				Details:      details(timer.ViewOf(next, t.now)),
			})
		}
		res.Changed = ok
		res.View = timer.ViewOf(t.Timer, t.now)
		return nil
	})
	return res, err
}

// Sessions lists the focus history newest first.
func (s *Service) Sessions(ctx context.Context, opts history.ListOptions) ([]history.FocusSession, error) {
	var out []history.FocusSession
	err := s.mutate(ctx, func(t *txn) error {
		out = history.List(t.Sessions, opts)
		return nil
	})
	return out, err
}

// DeleteSession removes a session from the history. The balance is left
// as is.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.mutate(ctx, func(t *txn) error {
		sessions, err := history.Remove(t.Sessions, id)
		if err != nil {
			return err
		}
		t.Sessions = sessions
		t.changed = true
		t.log(activity.ActivityEntry{
			ActivityType: activity.TypeSessionDeleted,
			SessionID:    optional(id),
			Summary:      "Focus session deleted",
		})
		return nil
	})
}

// Stats derives aggregate statistics from the history.
func (s *Service) Stats(ctx context.Context) (history.Stats, error) {
	var out history.Stats
	err := s.mutate(ctx, func(t *txn) error {
		out = history.Summarize(t.Sessions)
		return nil
	})
	return out, err
}

// Balance returns the reward balance.
func (s *Service) Balance(ctx context.Context) (int, error) {
	var out int
	err := s.mutate(ctx, func(t *txn) error {
		out = t.Balance
		return nil
	})
	return out, err
}
