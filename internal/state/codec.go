package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rpggio/focusgate/internal/clock"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
)

var (
	errTimerInvariant = errors.New("violates timer invariants")
	errModeMismatch   = errors.New("mode does not match duration")
	errNegative       = errors.New("negative value")
	errEmptyID        = errors.New("empty id")
	errBadStatus      = errors.New("unknown status")
	errTimeOrder      = errors.New("end before start")
)

// Encode serializes s into the blob format.
func Encode(s State) ([]byte, error) {
	b := blob{
		Version:        SchemaVersion,
		Timer:          encodeTimer(s.Timer),
		AppTimers:      make(map[string]appTimerWire, len(s.AppTimers)),
		UnlockRequests: make(map[string]unlockWire, len(s.Unlocks)),
		AppConfigs:     make(map[string]appConfigWire, len(s.AppConfigs)),
		Sessions:       make([]sessionWire, 0, len(s.Sessions)),
		Balance:        s.Balance,
	}
	for id, t := range s.AppTimers {
		b.AppTimers[id] = appTimerWire{
			UsedMs:       t.Used.Milliseconds(),
			LockedUntil:  toMs(t.LockedUntil),
			LastOpenedAt: toMs(t.LastOpenedAt),
		}
	}
	for id, r := range s.Unlocks {
		b.UnlockRequests[id] = unlockWire{
			RequestedAt: clock.UnixMilli(r.RequestedAt),
			ExpiresAt:   toMs(r.ExpiresAt),
		}
	}
	for id, c := range s.AppConfigs {
		b.AppConfigs[id] = appConfigWire{AllowedMs: c.Allowed.Milliseconds(), LockMs: c.Lock.Milliseconds()}
	}
	for _, fs := range s.Sessions {
		b.Sessions = append(b.Sessions, sessionWire{
			ID:                    fs.ID,
			StartTime:             clock.UnixMilli(fs.StartTime),
			EndTime:               clock.UnixMilli(fs.EndTime),
			TargetDurationSeconds: fs.TargetDurationSeconds,
			ActualFocusSeconds:    fs.ActualFocusSeconds,
			TotalBreakSeconds:     fs.TotalBreakSeconds,
			BreakCount:            fs.BreakCount,
			Status:                string(fs.Status),
			IsCounted:             fs.IsCounted,
		})
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a blob. An unreadable blob, a non-object or an unsupported
// version yields ErrCorrupt together with defaults. Otherwise every field is
// decoded on its own; missing fields take their default silently, invalid
// ones take their default with a warning.
func Decode(data []byte, defaults State) (Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return corrupt(defaults, err)
	}
	if raw == nil {
		return corrupt(defaults, errors.New("blob is null"))
	}

	d := &decoder{raw: raw}
	var version int
	if d.field("version", &version) && version != SchemaVersion {
		return corrupt(defaults, fmt.Errorf("unsupported version %d", version))
	}
	if len(d.warnings) > 0 {
		return corrupt(defaults, errors.New(d.warnings[0]))
	}

	out := defaults.Clone()

	var tw timerWire
	if d.field("timer", &tw) {
		if ts, err := decodeTimer(tw); err != nil {
			d.warn("timer", err)
		} else {
			out.Timer = ts
		}
	}

	var atw map[string]appTimerWire
	if d.field("appTimers", &atw) {
		out.AppTimers = usage.Timers{}
		for _, id := range sortedKeys(atw) {
			t, err := decodeAppTimer(id, atw[id])
			if err != nil {
				d.warn("appTimers."+id, err)
				continue
			}
			out.AppTimers[id] = t
		}
	}

	var uw map[string]unlockWire
	if d.field("unlockRequests", &uw) {
		out.Unlocks = unlock.Requests{}
		for _, id := range sortedKeys(uw) {
			r, err := decodeUnlock(id, uw[id])
			if err != nil {
				d.warn("unlockRequests."+id, err)
				continue
			}
			out.Unlocks[id] = r
		}
	}

	var cw map[string]appConfigWire
	if d.field("appConfigs", &cw) {
		out.AppConfigs = map[string]usage.AppConfig{}
		for _, id := range sortedKeys(cw) {
			w := cw[id]
			if id == "" {
				d.warn("appConfigs", errEmptyID)
				continue
			}
			cfg := usage.AppConfig{
				Allowed: time.Duration(w.AllowedMs) * time.Millisecond,
				Lock:    time.Duration(w.LockMs) * time.Millisecond,
			}
			clamped, err := usage.Clamp(cfg, usage.DefaultConfig)
			if err != nil {
				d.warn("appConfigs."+id, err)
			}
			out.AppConfigs[id] = clamped
		}
	}

	var sw []sessionWire
	if d.field("sessions", &sw) {
		out.Sessions = make([]history.FocusSession, 0, len(sw))
		for i, w := range sw {
			fs, err := decodeSession(w)
			if err != nil {
				d.warn(fmt.Sprintf("sessions[%d]", i), err)
				continue
			}
			out.Sessions = append(out.Sessions, fs)
		}
	}

	var balance int
	if d.field("balance", &balance) {
		if balance < 0 {
			d.warn("balance", errNegative)
		} else {
			out.Balance = balance
		}
	}

	return Result{State: out, Warnings: d.warnings}, nil
}

type decoder struct {
	raw      map[string]json.RawMessage
	warnings []string
}

// field decodes raw[key] into out. It reports false when the key is absent,
// null, or does not match the expected type.
func (d *decoder) field(key string, out any) bool {
	msg, ok := d.raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return false
	}
	if err := json.Unmarshal(msg, out); err != nil {
		d.warn(key, err)
		return false
	}
	return true
}

func (d *decoder) warn(key string, err error) {
	d.warnings = append(d.warnings, fmt.Sprintf("%s: %v", key, err))
}

func corrupt(defaults State, cause error) (Result, error) {
	return Result{
		State:    defaults.Clone(),
		Warnings: []string{fmt.Sprintf("blob: %v", cause)},
	}, fmt.Errorf("%w: %v", ErrCorrupt, cause)
}

func encodeTimer(s timer.State) timerWire {
	return timerWire{
		Mode:                   string(s.Mode()),
		TotalDurationSeconds:   s.TotalSeconds,
		EndTimestamp:           toMs(s.EndAt),
		PausedRemainingSeconds: copyInt(s.PausedRemaining),
		StartedAt:              toMs(s.StartedAt),
		PausedAt:               toMs(s.PausedAt),
		BreakCount:             s.BreakCount,
		BreakMs:                s.BreakMs,
	}
}

func decodeTimer(w timerWire) (timer.State, error) {
	s := timer.State{
		TotalSeconds:    w.TotalDurationSeconds,
		EndAt:           fromMs(w.EndTimestamp),
		PausedRemaining: copyInt(w.PausedRemainingSeconds),
		StartedAt:       fromMs(w.StartedAt),
		PausedAt:        fromMs(w.PausedAt),
		BreakCount:      w.BreakCount,
		BreakMs:         w.BreakMs,
	}
	if w.Mode != "" && timer.Mode(w.Mode) != s.Mode() {
		return timer.State{}, errModeMismatch
	}
	if !timer.Valid(s) {
		return timer.State{}, errTimerInvariant
	}
	return s, nil
}

func decodeAppTimer(id string, w appTimerWire) (usage.AppTimer, error) {
	if id == "" {
		return usage.AppTimer{}, errEmptyID
	}
	if w.UsedMs < 0 {
		return usage.AppTimer{}, errNegative
	}
	return usage.AppTimer{
		AppID:        id,
		Used:         time.Duration(w.UsedMs) * time.Millisecond,
		LockedUntil:  fromMs(w.LockedUntil),
		LastOpenedAt: fromMs(w.LastOpenedAt),
	}, nil
}

func decodeUnlock(id string, w unlockWire) (unlock.Request, error) {
	if id == "" {
		return unlock.Request{}, errEmptyID
	}
	if w.ExpiresAt != nil && *w.ExpiresAt < w.RequestedAt {
		return unlock.Request{}, errTimeOrder
	}
	return unlock.Request{
		AppID:       id,
		RequestedAt: clock.FromUnixMilli(w.RequestedAt),
		ExpiresAt:   fromMs(w.ExpiresAt),
	}, nil
}

func decodeSession(w sessionWire) (history.FocusSession, error) {
	if w.ID == "" {
		return history.FocusSession{}, errEmptyID
	}
	status := history.Status(w.Status)
	if status != history.StatusCompleted && status != history.StatusCanceled {
		return history.FocusSession{}, fmt.Errorf("%w %q", errBadStatus, w.Status)
	}
	if w.EndTime < w.StartTime {
		return history.FocusSession{}, errTimeOrder
	}
	if w.TargetDurationSeconds < 0 || w.ActualFocusSeconds < 0 || w.TotalBreakSeconds < 0 || w.BreakCount < 0 {
		return history.FocusSession{}, errNegative
	}
	return history.FocusSession{
		ID:                    w.ID,
		StartTime:             clock.FromUnixMilli(w.StartTime),
		EndTime:               clock.FromUnixMilli(w.EndTime),
		TargetDurationSeconds: w.TargetDurationSeconds,
		ActualFocusSeconds:    w.ActualFocusSeconds,
		TotalBreakSeconds:     w.TotalBreakSeconds,
		BreakCount:            w.BreakCount,
		Status:                status,
		IsCounted:             w.IsCounted,
	}, nil
}

func toMs(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := clock.UnixMilli(*t)
	return &ms
}

func fromMs(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := clock.FromUnixMilli(*ms)
	return &t
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
