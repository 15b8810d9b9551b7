package timer_test

import (
	"testing"
	"time"

	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestTimer_StartDisplaysDuration(t *testing.T) {
	for _, d := range []int{1, 59, 900, 1500, 3600} {
		s, err := timer.SetDuration(timer.Idle(0), d)
		require.NoError(t, err)
		s, ok := timer.Start(s, t0)
		require.True(t, ok)
		require.Equal(t, timer.PhaseRunning, s.Phase())
		require.Equal(t, d, timer.Display(s, t0), "duration %d", d)
	}
}

func TestTimer_StopwatchCountsUp(t *testing.T) {
	s, ok := timer.Start(timer.Idle(0), t0)
	require.True(t, ok)
	require.Equal(t, timer.ModeStopwatch, s.Mode())
	require.Equal(t, timer.PhaseRunning, s.Phase())
	require.Nil(t, s.EndAt)
	require.Equal(t, 0, timer.Display(s, t0))
	require.Equal(t, 5, timer.Display(s, t0.Add(5900*time.Millisecond)))

	s, _ = timer.Pause(s, t0.Add(10*time.Second))
	require.Equal(t, 10, timer.Display(s, t0.Add(time.Hour)))

	s, _ = timer.Resume(s, t0.Add(70*time.Second))
	require.Equal(t, 10, timer.Display(s, t0.Add(70*time.Second)))
	require.Equal(t, 15, timer.Display(s, t0.Add(75*time.Second)))

	next, run := timer.Tick(s, t0.Add(48*time.Hour))
	require.Nil(t, run, "stopwatch never completes on its own")
	require.Equal(t, s, next)
}

func TestTimer_SetDurationRejections(t *testing.T) {
	s := timer.Idle(1500)

	_, err := timer.SetDuration(s, -1)
	require.ErrorIs(t, err, timer.ErrInvalidDuration)
	_, err = timer.SetDuration(s, timer.MaxDurationSeconds+1)
	require.ErrorIs(t, err, timer.ErrInvalidDuration)

	running, _ := timer.Start(s, t0)
	same, err := timer.SetDuration(running, 60)
	require.ErrorIs(t, err, timer.ErrTimerActive)
	require.Equal(t, running, same)
}

func TestTimer_PauseResumeRoundTrip(t *testing.T) {
	s, _ := timer.Start(timer.Idle(1500), t0)
	at := t0.Add(7*time.Minute + 300*time.Millisecond)
	before := timer.Display(s, at)

	paused, ok := timer.Pause(s, at)
	require.True(t, ok)
	require.Equal(t, before, timer.Display(paused, at))
	require.Nil(t, paused.EndAt)
	require.NotNil(t, paused.PausedRemaining)

	resumed, ok := timer.Resume(paused, at)
	require.True(t, ok)
	require.Equal(t, before, timer.Display(resumed, at))
	require.Nil(t, resumed.PausedRemaining)
	require.Equal(t, 1, resumed.BreakCount)
}

func TestTimer_IllegalTransitionsAreNoOps(t *testing.T) {
	idle := timer.Idle(900)

	s, ok := timer.Pause(idle, t0)
	require.False(t, ok)
	require.Equal(t, idle, s)

	s, ok = timer.Resume(idle, t0)
	require.False(t, ok)
	require.Equal(t, idle, s)

	s, run := timer.Reset(idle, t0)
	require.Nil(t, run)
	require.Equal(t, idle, s)

	running, _ := timer.Start(idle, t0)
	s, ok = timer.Start(running, t0.Add(time.Second))
	require.False(t, ok)
	require.Equal(t, running, s)

	s, ok = timer.Resume(running, t0.Add(time.Second))
	require.False(t, ok)
	require.Equal(t, running, s)
}

func TestTimer_InvariantHoldsAcrossSequences(t *testing.T) {
	type step func(timer.State, time.Time) timer.State
	steps := []step{
		func(s timer.State, now time.Time) timer.State { s, _ = timer.Start(s, now); return s },
		func(s timer.State, now time.Time) timer.State { s, _ = timer.Pause(s, now); return s },
		func(s timer.State, now time.Time) timer.State { s, _ = timer.Resume(s, now); return s },
		func(s timer.State, now time.Time) timer.State { s, _ = timer.Reset(s, now); return s },
		func(s timer.State, now time.Time) timer.State { s, _ = timer.Tick(s, now); return s },
	}

	for _, total := range []int{0, 5, 90} {
		s := timer.Idle(total)
		now := t0
		for i := 0; i < 200; i++ {
			s = steps[(i*7+i/3)%len(steps)](s, now)
			now = now.Add(time.Duration(i%4) * 1700 * time.Millisecond)
			require.False(t, s.EndAt != nil && s.PausedRemaining != nil)
			require.True(t, timer.Valid(s), "step %d total %d", i, total)
		}
	}
}

func TestTimer_ResetCancelsShortRun(t *testing.T) {
	s, _ := timer.Start(timer.Idle(1500), t0)

	idle, run := timer.Reset(s, t0.Add(10*time.Second))
	require.Equal(t, timer.PhaseIdle, idle.Phase())
	require.Equal(t, 1500, timer.Display(idle, t0.Add(10*time.Second)))
	require.NotNil(t, run)
	require.Equal(t, timer.OutcomeCanceled, run.Outcome)
	require.Equal(t, t0, run.StartedAt)
	require.Equal(t, t0.Add(10*time.Second), run.EndedAt)
	require.Equal(t, 1500, run.TargetSeconds)
}

func TestTimer_ResetWithoutActiveTimeEmitsNothing(t *testing.T) {
	s, _ := timer.Start(timer.Idle(1500), t0)
	_, run := timer.Reset(s, t0)
	require.Nil(t, run)
}

func TestTimer_ResetWhilePausedCountsPauseAsBreak(t *testing.T) {
	s, _ := timer.Start(timer.Idle(1500), t0)
	s, _ = timer.Pause(s, t0.Add(2*time.Minute))

	_, run := timer.Reset(s, t0.Add(5*time.Minute))
	require.NotNil(t, run)
	require.Equal(t, 180, run.BreakSeconds)
	require.Equal(t, 1, run.BreakCount)
}

func TestTimer_TickCompletesOnce(t *testing.T) {
	s, _ := timer.Start(timer.Idle(900), t0)

	var runs []*timer.Run
	now := t0
	for i := 0; i < 5000; i++ {
		var run *timer.Run
		s, run = timer.Tick(s, now)
		if run != nil {
			runs = append(runs, run)
		}
		now = now.Add(200 * time.Millisecond)
	}

	require.Len(t, runs, 1)
	require.Equal(t, timer.OutcomeCompleted, runs[0].Outcome)
	require.Equal(t, t0.Add(900*time.Second), runs[0].EndedAt)
	require.Equal(t, timer.PhaseIdle, s.Phase())
	require.Equal(t, 900, timer.Display(s, now))
}

func TestTimer_TickBeforeEndIsNoOp(t *testing.T) {
	s, _ := timer.Start(timer.Idle(60), t0)
	next, run := timer.Tick(s, t0.Add(59999*time.Millisecond))
	require.Nil(t, run)
	require.Equal(t, s, next)
	require.Equal(t, 1, timer.Display(next, t0.Add(59999*time.Millisecond)))
}

func TestTimer_CountdownDisplayClampsAtZero(t *testing.T) {
	s, _ := timer.Start(timer.Idle(30), t0)
	require.Equal(t, 0, timer.Display(s, t0.Add(time.Hour)))
}

func TestTimer_PausedTimeExtendsEnd(t *testing.T) {
	s, _ := timer.Start(timer.Idle(600), t0)
	s, _ = timer.Pause(s, t0.Add(100*time.Second))
	s, _ = timer.Resume(s, t0.Add(400*time.Second))
	require.Equal(t, t0.Add(900*time.Second), *s.EndAt)

	_, run := timer.Tick(s, t0.Add(900*time.Second))
	require.NotNil(t, run)
	require.Equal(t, 300, run.BreakSeconds)
	require.Equal(t, t0, run.StartedAt)
}

func TestTimer_ValidRejectsStalePauseMark(t *testing.T) {
	s, _ := timer.Start(timer.Idle(600), t0)
	require.True(t, timer.Valid(s))

	mark := t0.Add(time.Minute)
	s.PausedAt = &mark
	require.False(t, timer.Valid(s))

	paused, _ := timer.Pause(timer.Idle(600), t0)
	require.True(t, timer.Valid(paused), "pause from idle is a no-op")
}
