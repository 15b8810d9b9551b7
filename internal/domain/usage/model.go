package usage

import "time"

// Configuration bounds enforced when limits are written.
const (
	MaxAllowed = 30 * time.Minute
	MinLock    = 60 * time.Minute
)

// DefaultConfig applies to apps without explicit limits.
var DefaultConfig = AppConfig{Allowed: 15 * time.Minute, Lock: 60 * time.Minute}

// AppConfig is the per-app usage budget and lockout length.
type AppConfig struct {
	Allowed time.Duration `json:"allowed" yaml:"allowed"`
	Lock    time.Duration `json:"lock" yaml:"lock"`
}

// AppTimer tracks one app's consumption within the current cycle.
type AppTimer struct {
	AppID        string        `json:"app_id"`
	Used         time.Duration `json:"used"`
	LockedUntil  *time.Time    `json:"locked_until,omitempty"`
	LastOpenedAt *time.Time    `json:"last_opened_at,omitempty"`
}

// Locked reports whether the lock window is still active at now.
func (t AppTimer) Locked(now time.Time) bool {
	return t.LockedUntil != nil && t.LockedUntil.After(now)
}

// Open reports whether usage is currently accruing.
func (t AppTimer) Open() bool {
	return t.LastOpenedAt != nil
}

// Timers is the set of tracked apps keyed by app id.
type Timers map[string]AppTimer

// Clone returns a shallow copy safe to modify.
func (t Timers) Clone() Timers {
	out := make(Timers, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Status is the per-app view exposed to callers.
type Status struct {
	AppID       string        `json:"app_id"`
	Locked      bool          `json:"locked"`
	Open        bool          `json:"open"`
	Used        time.Duration `json:"used"`
	Remaining   time.Duration `json:"remaining"`
	LockedUntil *time.Time    `json:"locked_until,omitempty"`
}
