package unlock

import "time"

// Policy holds the global wait and grant lengths.
type Policy struct {
	MinWait     time.Duration
	GrantWindow time.Duration
}

// Request is an unlock ticket for one app. ExpiresAt is nil while the
// mandatory wait is still running.
type Request struct {
	AppID       string     `json:"app_id"`
	RequestedAt time.Time  `json:"requested_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Requests holds at most one ticket per app id.
type Requests map[string]Request

// Clone returns a shallow copy safe to modify.
func (r Requests) Clone() Requests {
	out := make(Requests, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Phase describes where a ticket is in its lifecycle.
type Phase string

const (
	PhaseNone    Phase = "none"
	PhaseWaiting Phase = "waiting"
	PhaseGranted Phase = "granted"
	PhaseExpired Phase = "expired"
)

// Status is the per-app view exposed to callers.
type Status struct {
	AppID       string     `json:"app_id"`
	Phase       Phase      `json:"phase"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	WaitEndsAt  *time.Time `json:"wait_ends_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
