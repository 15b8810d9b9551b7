package activity

import "time"

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	AppID     *string
	SessionID *string
	Types     []ActivityType
	Since     *time.Time
	Limit     int
	Offset    int
}
