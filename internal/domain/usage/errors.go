package usage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLocked indicates the app is inside its lockout window.
	ErrLocked = errors.New("app is locked")
	// ErrInvalidConfig indicates limits outside the allowed bounds.
	ErrInvalidConfig = errors.New("invalid usage limits")
)

// LockedError carries the lock window of a denied open.
type LockedError struct {
	AppID string
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("app %s locked until %s", e.AppID, e.Until.Format(time.RFC3339))
}

// Is matches ErrLocked.
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}
