package unlock

import "errors"

var (
	// ErrAlreadyPending indicates a request is waiting or already granted.
	ErrAlreadyPending = errors.New("unlock request already pending")
	// ErrNotGranted indicates the app has no active grant.
	ErrNotGranted = errors.New("unlock not granted")
	// ErrNoRequest indicates there is nothing to cancel.
	ErrNoRequest = errors.New("no unlock request")
)
