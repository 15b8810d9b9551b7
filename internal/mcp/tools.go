package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/focus"
)

// registerTools registers every focusgate tool on server.
func registerTools(server *sdkmcp.Server, svc FocusService, presets []int) {
	// Timer
	addTool(server, "timer_status", "Show the focus timer: phase, mode and seconds to display",
		func(ctx context.Context, _ NoParams) (any, error) {
			view, err := svc.Timer(ctx)
			if err != nil {
				return nil, err
			}
			return TimerResponse{Timer: view, Presets: presets}, nil
		})
	addTool(server, "timer_set_duration", "Set the countdown length in seconds while the timer is idle; 0 selects the stopwatch",
		func(ctx context.Context, in SetDurationParams) (any, error) {
			res, err := svc.SetDuration(ctx, in.Seconds)
			if err != nil {
				return nil, err
			}
			return toTimerResponse(res), nil
		})
	addTool(server, "timer_start", "Start a focus run from idle",
		timerTool(svc.Start))
	addTool(server, "timer_pause", "Pause the running focus run",
		timerTool(svc.Pause))
	addTool(server, "timer_resume", "Resume a paused focus run",
		timerTool(svc.Resume))
	addTool(server, "timer_reset", "Abandon the current run; a run with focus time is recorded as canceled",
		timerTool(svc.Reset))

	// Apps
	addTool(server, "app_open", "Ask to open an app; denied while locked, blocked or without an unlock grant",
		appTool(svc.OpenApp))
	addTool(server, "app_close", "Report that an app was closed; usage is added to the current cycle",
		appTool(svc.CloseApp))
	addTool(server, "app_status", "Show the gate state of an app",
		appTool(svc.AppStatus))
	addTool(server, "app_list", "List every classified app with its gate state",
		func(ctx context.Context, _ NoParams) (any, error) {
			views, err := svc.Apps(ctx)
			if err != nil {
				return nil, err
			}
			resp := AppListResponse{Apps: make([]AppResponse, 0, len(views))}
			for _, v := range views {
				resp.Apps = append(resp.Apps, toAppResponse(v))
			}
			return resp, nil
		})
	addTool(server, "app_set_limits", "Set the usage budget and lockout length of an app; values are clamped into bounds",
		func(ctx context.Context, in SetLimitsParams) (any, error) {
			res, err := svc.SetAppLimits(ctx, in.AppID, usage.AppConfig{
				Allowed: time.Duration(in.AllowedMs) * time.Millisecond,
				Lock:    time.Duration(in.LockMs) * time.Millisecond,
			})
			if err != nil {
				return nil, err
			}
			return LimitsResponse{
				AppID:     res.AppID,
				AllowedMs: res.Limits.Allowed.Milliseconds(),
				LockMs:    res.Limits.Lock.Milliseconds(),
				Adjusted:  res.Adjusted,
			}, nil
		})

	// Unlock
	addTool(server, "unlock_request", "Request an unlock for a request app; the grant starts once the mandatory wait passes",
		func(ctx context.Context, in AppParams) (any, error) {
			st, err := svc.RequestUnlock(ctx, in.AppID)
			switch {
			case errors.Is(err, unlock.ErrAlreadyPending):
				return UnlockResponse{Status: "already_pending", Unlock: st}, nil
			case err != nil:
				return nil, err
			}
			return UnlockResponse{Status: "requested", Unlock: st}, nil
		})
	addTool(server, "unlock_cancel", "Withdraw a waiting or granted unlock",
		func(ctx context.Context, in AppParams) (any, error) {
			if err := svc.CancelUnlock(ctx, in.AppID); err != nil {
				return nil, err
			}
			st, err := svc.UnlockStatus(ctx, in.AppID)
			if err != nil {
				return nil, err
			}
			return UnlockResponse{Status: "canceled", Unlock: st}, nil
		})
	addTool(server, "unlock_status", "Show where an unlock request is: none, waiting, granted or expired",
		func(ctx context.Context, in AppParams) (any, error) {
			st, err := svc.UnlockStatus(ctx, in.AppID)
			if err != nil {
				return nil, err
			}
			return UnlockResponse{Status: string(st.Phase), Unlock: st}, nil
		})

	// History
	addTool(server, "history_list", "List focus sessions newest first",
		func(ctx context.Context, in HistoryListParams) (any, error) {
			opts := history.ListOptions{Limit: in.Limit, Offset: in.Offset}
			if in.Status != "" {
				status := history.Status(in.Status)
				if status != history.StatusCompleted && status != history.StatusCanceled {
					return nil, fmt.Errorf("%w: status %q", focus.ErrInvalidInput, in.Status)
				}
				opts.Status = &status
			}
			sessions, err := svc.Sessions(ctx, opts)
			if err != nil {
				return nil, err
			}
			if sessions == nil {
				sessions = []history.FocusSession{}
			}
			return HistoryListResponse{Sessions: sessions}, nil
		})
	addTool(server, "history_delete", "Delete a focus session from the history",
		func(ctx context.Context, in HistoryDeleteParams) (any, error) {
			if err := svc.DeleteSession(ctx, in.ID); err != nil {
				return nil, err
			}
			return DeleteResponse{Deleted: in.ID}, nil
		})
	addTool(server, "history_stats", "Show aggregate focus statistics and the reward balance",
		func(ctx context.Context, _ NoParams) (any, error) {
			stats, err := svc.Stats(ctx)
			if err != nil {
				return nil, err
			}
			balance, err := svc.Balance(ctx)
			if err != nil {
				return nil, err
			}
			return StatsResponse{Stats: stats, Balance: balance}, nil
		})
	addTool(server, "recent_activity", "List recent timer, app and unlock activity",
		func(ctx context.Context, in RecentActivityParams) (any, error) {
			opts := activity.ListActivityOptions{Limit: in.Limit}
			if in.AppID != "" {
				opts.AppID = &in.AppID
			}
			for _, typ := range in.Types {
				opts.Types = append(opts.Types, activity.ActivityType(typ))
			}
			entries, err := svc.RecentActivity(ctx, opts)
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []activity.ActivityEntry{}
			}
			return ActivityResponse{Entries: entries}, nil
		})
}

func timerTool(op func(context.Context) (focus.TimerResult, error)) func(context.Context, NoParams) (any, error) {
	return func(ctx context.Context, _ NoParams) (any, error) {
		res, err := op(ctx)
		if err != nil {
			return nil, err
		}
		return toTimerResponse(res), nil
	}
}

func appTool(op func(context.Context, string) (focus.AppView, error)) func(context.Context, AppParams) (any, error) {
	return func(ctx context.Context, in AppParams) (any, error) {
		view, err := op(ctx, in.AppID)
		if err != nil {
			return nil, err
		}
		return toAppResponse(view), nil
	}
}

func addTool[In any](server *sdkmcp.Server, name, description string, fn func(context.Context, In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				return toolError(err)
			}
			return nil, out, nil
		})
}

// toolError reports domain errors as tool results carrying an APIError so
// callers can show the denial. Other errors fail the call.
func toolError(err error) (*sdkmcp.CallToolResult, any, error) {
	apiErr := MapError(err)
	if apiErr == nil {
		return nil, nil, err
	}
	data, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
