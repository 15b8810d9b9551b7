// Package usage tracks per-app usage cycles: an allowed budget that, once
// consumed, locks the app for a fixed cooldown.
package usage

import (
	"fmt"
	"time"
)

// Open starts accruing usage for appID. It fails with a *LockedError while
// the app is inside its lock window. Re-opening an open app keeps the
// original start.
func Open(timers Timers, appID string, now time.Time) (Timers, error) {
	current := timers[appID]
	if current.Locked(now) {
		return timers, &LockedError{AppID: appID, Until: *current.LockedUntil}
	}
	if current.Open() {
		return timers, nil
	}

	next := timers.Clone()
	current.AppID = appID
	current.LockedUntil = nil
	current.LastOpenedAt = &now
	next[appID] = current
	return next, nil
}

// Close stops accrual and adds the elapsed time to the cycle. When the
// budget is exhausted the app locks for cfg.Lock and the cycle restarts
// at zero, even if the session overshot the budget. The returned bool
// reports whether this close triggered the lock.
func Close(timers Timers, appID string, cfg AppConfig, now time.Time) (Timers, bool) {
	current, ok := timers[appID]
	if !ok || !current.Open() {
		return timers, false
	}

	elapsed := now.Sub(*current.LastOpenedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	current.Used += elapsed
	current.LastOpenedAt = nil

	locked := false
	if current.Used >= cfg.Allowed {
		until := now.Add(cfg.Lock)
		current.LockedUntil = &until
		current.Used = 0
		locked = true
	}

	next := timers.Clone()
	next[appID] = current
	return next, locked
}

// Reconcile locks appID when its recorded usage already reaches the budget
// in cfg, as after the budget was lowered. Open or locked apps are left
// alone; the next close settles an open app. The bool reports whether a
// lock was applied.
func Reconcile(timers Timers, appID string, cfg AppConfig, now time.Time) (Timers, bool) {
	current, ok := timers[appID]
	if !ok || current.Open() || current.Locked(now) || current.Used < cfg.Allowed {
		return timers, false
	}
	until := now.Add(cfg.Lock)
	current.LockedUntil = &until
	current.Used = 0

	next := timers.Clone()
	next[appID] = current
	return next, true
}

// IsLocked reports whether appID is locked at now.
func IsLocked(timers Timers, appID string, now time.Time) bool {
	return timers[appID].Locked(now)
}

// Sweep clears lock windows that have passed. The bool reports whether
// anything changed.
func Sweep(timers Timers, now time.Time) (Timers, bool) {
	var next Timers
	for id, t := range timers {
		if t.LockedUntil == nil || t.Locked(now) {
			continue
		}
		if next == nil {
			next = timers.Clone()
		}
		t.LockedUntil = nil
		next[id] = t
	}
	if next == nil {
		return timers, false
	}
	return next, true
}

// StatusOf builds the view of appID at now. Usage of a currently open app
// is not counted until it closes.
func StatusOf(timers Timers, appID string, cfg AppConfig, now time.Time) Status {
	t := timers[appID]
	st := Status{
		AppID: appID,
		Open:  t.Open(),
		Used:  t.Used,
	}
	if t.Locked(now) {
		st.Locked = true
		st.LockedUntil = t.LockedUntil
		return st
	}
	if remaining := cfg.Allowed - t.Used; remaining > 0 {
		st.Remaining = remaining
	}
	return st
}

// Clamp forces cfg into the supported bounds. Non-positive values fall back
// to the matching field of def. The error wraps ErrInvalidConfig and
// describes the adjustment; the returned config is always usable.
func Clamp(cfg, def AppConfig) (AppConfig, error) {
	out := cfg
	var adjusted []string

	if out.Allowed <= 0 {
		out.Allowed = def.Allowed
		adjusted = append(adjusted, fmt.Sprintf("allowed %s not positive, using %s", cfg.Allowed, out.Allowed))
	}
	if out.Allowed > MaxAllowed {
		adjusted = append(adjusted, fmt.Sprintf("allowed %s above %s", out.Allowed, MaxAllowed))
		out.Allowed = MaxAllowed
	}
	if out.Lock <= 0 {
		out.Lock = def.Lock
	}
	if out.Lock < MinLock {
		adjusted = append(adjusted, fmt.Sprintf("lock %s below %s", cfg.Lock, MinLock))
		out.Lock = MinLock
	}

	if len(adjusted) == 0 {
		return out, nil
	}
	return out, fmt.Errorf("%w: %v", ErrInvalidConfig, adjusted)
}
