package mcp

import (
	"time"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/focus"
)

type NoParams struct{}

type SetDurationParams struct {
	Seconds int `json:"seconds" jsonschema:"target length in seconds, 0 selects the stopwatch"`
}

type AppParams struct {
	AppID string `json:"app_id" jsonschema:"app identifier"`
}

type SetLimitsParams struct {
	AppID     string `json:"app_id" jsonschema:"app identifier"`
	AllowedMs int64  `json:"allowed_ms" jsonschema:"usage budget per cycle in milliseconds, at most 30 minutes"`
	LockMs    int64  `json:"lock_ms" jsonschema:"lockout length in milliseconds, at least 60 minutes"`
}

type HistoryListParams struct {
	Status string `json:"status,omitempty" jsonschema:"filter by completed or canceled"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of sessions"`
	Offset int    `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

type HistoryDeleteParams struct {
	ID string `json:"id" jsonschema:"focus session id"`
}

type RecentActivityParams struct {
	AppID string   `json:"app_id,omitempty" jsonschema:"only entries for this app"`
	Types []string `json:"types,omitempty" jsonschema:"only entries of these types"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of entries"`
}

type TimerResponse struct {
	Timer   timer.View            `json:"timer"`
	Changed bool                  `json:"changed"`
	Session *history.FocusSession `json:"session,omitempty"`
	Presets []int                 `json:"presets,omitempty"`
}

type AppResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Policy      string         `json:"policy"`
	Accessible  bool           `json:"accessible"`
	AllowedMs   int64          `json:"allowed_ms"`
	LockMs      int64          `json:"lock_ms"`
	Open        bool           `json:"open,omitempty"`
	UsedMs      int64          `json:"used_ms,omitempty"`
	RemainingMs int64          `json:"remaining_ms,omitempty"`
	LockedUntil *time.Time     `json:"locked_until,omitempty"`
	Unlock      *unlock.Status `json:"unlock,omitempty"`
}

type AppListResponse struct {
	Apps []AppResponse `json:"apps"`
}

type LimitsResponse struct {
	AppID     string `json:"app_id"`
	AllowedMs int64  `json:"allowed_ms"`
	LockMs    int64  `json:"lock_ms"`
	Adjusted  string `json:"adjusted,omitempty"`
}

type UnlockResponse struct {
	Status string        `json:"status"`
	Unlock unlock.Status `json:"unlock"`
}

type HistoryListResponse struct {
	Sessions []history.FocusSession `json:"sessions"`
}

type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

type StatsResponse struct {
	Stats   history.Stats `json:"stats"`
	Balance int           `json:"balance"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

func toTimerResponse(res focus.TimerResult) TimerResponse {
	return TimerResponse{Timer: res.View, Changed: res.Changed, Session: res.Session}
}

func toAppResponse(v focus.AppView) AppResponse {
	resp := AppResponse{
		ID:         v.ID,
		Name:       v.Name,
		Policy:     string(v.Policy),
		Accessible: v.Accessible,
		AllowedMs:  v.Limits.Allowed.Milliseconds(),
		LockMs:     v.Limits.Lock.Milliseconds(),
		Unlock:     v.Unlock,
	}
	if v.Usage != nil {
		resp.Open = v.Usage.Open
		resp.UsedMs = v.Usage.Used.Milliseconds()
		resp.RemainingMs = v.Usage.Remaining.Milliseconds()
		resp.LockedUntil = v.Usage.LockedUntil
	}
	return resp
}
