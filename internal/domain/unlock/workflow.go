// Package unlock implements the request-and-wait gate: a ticket becomes a
// fixed-length grant once its mandatory wait elapses.
package unlock

import (
	"sort"
	"time"
)

// RequestUnlock opens a ticket for appID. A waiting ticket or an active
// grant yields ErrAlreadyPending; an expired ticket is replaced.
func RequestUnlock(reqs Requests, appID string, now time.Time, p Policy) (Requests, error) {
	if existing, ok := reqs[appID]; ok && live(existing, now, p) {
		return reqs, ErrAlreadyPending
	}
	next := reqs.Clone()
	next[appID] = Request{AppID: appID, RequestedAt: now}
	return next, nil
}

// Evaluate grants every waiting ticket whose wait has elapsed and prunes
// expired ones. It returns the app ids granted by this call whose window is
// still open, sorted, and whether anything changed.
func Evaluate(reqs Requests, now time.Time, p Policy) (Requests, []string, bool) {
	var (
		next    Requests
		granted []string
	)
	mutable := func() Requests {
		if next == nil {
			next = reqs.Clone()
		}
		return next
	}

	for id, r := range reqs {
		if r.ExpiresAt == nil && now.Sub(r.RequestedAt) >= p.MinWait {
			expires := expiry(r, p)
			r.ExpiresAt = &expires
			mutable()[id] = r
			if now.Before(expires) {
				granted = append(granted, id)
			}
		}
		if r.ExpiresAt != nil && !now.Before(*r.ExpiresAt) {
			delete(mutable(), id)
		}
	}

	sort.Strings(granted)
	if next == nil {
		return reqs, nil, false
	}
	return next, granted, true
}

// IsUsable reports whether appID holds an active grant at now.
func IsUsable(reqs Requests, appID string, now time.Time) bool {
	r, ok := reqs[appID]
	return ok && r.ExpiresAt != nil && now.Before(*r.ExpiresAt)
}

// Cancel withdraws the ticket for appID.
func Cancel(reqs Requests, appID string) (Requests, error) {
	if _, ok := reqs[appID]; !ok {
		return reqs, ErrNoRequest
	}
	next := reqs.Clone()
	delete(next, appID)
	return next, nil
}

// StatusOf describes the ticket for appID at now without mutating it. A
// granted ticket reports the expiry fixed when it was granted.
func StatusOf(reqs Requests, appID string, now time.Time, p Policy) Status {
	r, ok := reqs[appID]
	if !ok {
		return Status{AppID: appID, Phase: PhaseNone}
	}

	requestedAt := r.RequestedAt
	waitEnds := r.RequestedAt.Add(p.MinWait)
	expires := expiry(r, p)
	if r.ExpiresAt != nil {
		expires = *r.ExpiresAt
		if waitEnds.After(expires) {
			waitEnds = expires
		}
	}
	st := Status{
		AppID:       appID,
		RequestedAt: &requestedAt,
		WaitEndsAt:  &waitEnds,
		ExpiresAt:   &expires,
	}
	switch {
	case !now.Before(expires):
		st.Phase = PhaseExpired
	case r.ExpiresAt != nil:
		st.Phase = PhaseGranted
	default:
		st.Phase = PhaseWaiting
	}
	return st
}

// live reports whether a ticket still blocks a fresh request.
func live(r Request, now time.Time, p Policy) bool {
	if r.ExpiresAt != nil {
		return now.Before(*r.ExpiresAt)
	}
	return now.Before(expiry(r, p))
}

func expiry(r Request, p Policy) time.Time {
	return r.RequestedAt.Add(p.MinWait + p.GrantWindow)
}
