package state

// Wire shapes of the persisted blob. Instants are milliseconds since epoch.

type blob struct {
	Version        int                      `json:"version"`
	Timer          timerWire                `json:"timer"`
	AppTimers      map[string]appTimerWire  `json:"appTimers"`
	UnlockRequests map[string]unlockWire    `json:"unlockRequests"`
	AppConfigs     map[string]appConfigWire `json:"appConfigs"`
	Sessions       []sessionWire            `json:"sessions"`
	Balance        int                      `json:"balance"`
}

type timerWire struct {
	Mode                   string `json:"mode"`
	TotalDurationSeconds   int    `json:"totalDurationSeconds"`
	EndTimestamp           *int64 `json:"endTimestamp"`
	PausedRemainingSeconds *int   `json:"pausedRemainingSeconds"`
	StartedAt              *int64 `json:"startedAt"`
	PausedAt               *int64 `json:"pausedAt"`
	BreakCount             int    `json:"breakCount"`
	BreakMs                int64  `json:"breakMs"`
}

type appTimerWire struct {
	UsedMs       int64  `json:"usedMs"`
	LockedUntil  *int64 `json:"lockedUntil"`
	LastOpenedAt *int64 `json:"lastOpenedAt"`
}

type unlockWire struct {
	RequestedAt int64  `json:"requestedAt"`
	ExpiresAt   *int64 `json:"expiresAt"`
}

type appConfigWire struct {
	AllowedMs int64 `json:"allowedMs"`
	LockMs    int64 `json:"lockMs"`
}

type sessionWire struct {
	ID                    string `json:"id"`
	StartTime             int64  `json:"startTime"`
	EndTime               int64  `json:"endTime"`
	TargetDurationSeconds int    `json:"targetDurationSeconds"`
	ActualFocusSeconds    int    `json:"actualFocusSeconds"`
	TotalBreakSeconds     int    `json:"totalBreakSeconds"`
	BreakCount            int    `json:"breakCount"`
	Status                string `json:"status"`
	IsCounted             bool   `json:"isCounted"`
}
