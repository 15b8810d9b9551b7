package timer

import "errors"

var (
	// ErrInvalidDuration indicates a negative or out-of-range duration.
	ErrInvalidDuration = errors.New("invalid timer duration")
	// ErrTimerActive indicates the duration cannot change while a run is in progress.
	ErrTimerActive = errors.New("timer is running or paused")
)
