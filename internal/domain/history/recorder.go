// Package history turns finished timer runs into immutable focus sessions
// and derives statistics from them.
package history

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/focusgate/internal/domain/timer"
)

// Recorder builds focus sessions.
type Recorder struct {
	minCountable int
	newID        func() string
}

// NewRecorder creates a recorder. A non-positive floor uses
// DefaultMinCountableSeconds.
func NewRecorder(minCountableSeconds int) *Recorder {
	if minCountableSeconds <= 0 {
		minCountableSeconds = DefaultMinCountableSeconds
	}
	return &Recorder{minCountable: minCountableSeconds, newID: uuid.NewString}
}

// RecordCompletion builds a completed session.
func (r *Recorder) RecordCompletion(start, now time.Time, targetSeconds int, breaks BreakStats) FocusSession {
	return r.build(StatusCompleted, start, now, targetSeconds, breaks)
}

// RecordCancellation builds a canceled session.
func (r *Recorder) RecordCancellation(start, now time.Time, targetSeconds int, breaks BreakStats) FocusSession {
	return r.build(StatusCanceled, start, now, targetSeconds, breaks)
}

// FromRun builds the session matching a finished timer run.
func (r *Recorder) FromRun(run timer.Run) FocusSession {
	breaks := BreakStats{TotalSeconds: run.BreakSeconds, Count: run.BreakCount}
	if run.Outcome == timer.OutcomeCompleted {
		return r.RecordCompletion(run.StartedAt, run.EndedAt, run.TargetSeconds, breaks)
	}
	return r.RecordCancellation(run.StartedAt, run.EndedAt, run.TargetSeconds, breaks)
}

func (r *Recorder) build(status Status, start, end time.Time, targetSeconds int, breaks BreakStats) FocusSession {
	actual := int(end.Sub(start)/time.Second) - breaks.TotalSeconds
	if actual < 0 {
		actual = 0
	}
	return FocusSession{
		ID:                    r.newID(),
		StartTime:             start,
		EndTime:               end,
		TargetDurationSeconds: targetSeconds,
		ActualFocusSeconds:    actual,
		TotalBreakSeconds:     breaks.TotalSeconds,
		BreakCount:            breaks.Count,
		Status:                status,
		IsCounted:             actual >= r.minCountable,
	}
}

// Append returns a new slice with s added.
func Append(sessions []FocusSession, s FocusSession) []FocusSession {
	out := make([]FocusSession, 0, len(sessions)+1)
	out = append(out, sessions...)
	return append(out, s)
}

// Remove deletes the session with id.
func Remove(sessions []FocusSession, id string) ([]FocusSession, error) {
	for i, s := range sessions {
		if s.ID != id {
			continue
		}
		out := make([]FocusSession, 0, len(sessions)-1)
		out = append(out, sessions[:i]...)
		return append(out, sessions[i+1:]...), nil
	}
	return sessions, ErrSessionNotFound
}

// List returns sessions newest first, filtered and paged by opts.
func List(sessions []FocusSession, opts ListOptions) []FocusSession {
	out := make([]FocusSession, 0, len(sessions))
	for _, s := range sessions {
		if opts.Status != nil && s.Status != *opts.Status {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndTime.After(out[j].EndTime)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []FocusSession{}
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

// Summarize derives aggregate statistics. Only counted sessions contribute;
// focus time sums completed sessions.
func Summarize(sessions []FocusSession) Stats {
	var st Stats
	for _, s := range sessions {
		if !s.IsCounted {
			st.UncountedSessions++
			continue
		}
		st.TotalSessions++
		switch s.Status {
		case StatusCompleted:
			st.CompletedCount++
			st.TotalFocusSeconds += s.ActualFocusSeconds
		case StatusCanceled:
			st.CanceledCount++
		}
	}
	st.FocusHours = float64(st.TotalFocusSeconds) / 3600
	if st.TotalSessions > 0 {
		st.SuccessRate = float64(st.CompletedCount) / float64(st.TotalSessions)
	}
	return st
}
