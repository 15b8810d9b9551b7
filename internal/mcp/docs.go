package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `focusgate keeps a focus timer and gates distracting apps.

Core concepts:
- Timer: idle, running or paused. A countdown completes on its own; a duration of 0 runs a stopwatch.
- Session: every finished run is recorded as completed or canceled. Runs under a minute are kept but not counted.
- Cycle app: has a usage budget; once the budget is used up the app locks for a cooldown.
- Request app: needs an unlock request, a mandatory wait, then a fixed grant window.
- Blocked app: never unlockable.

Typical loop:
1) timer_status, then timer_set_duration and timer_start.
2) Before opening an app call app_open. A denial result carries APP_LOCKED, UNLOCK_REQUIRED or PERMANENTLY_BLOCKED.
3) Call app_close when the app is left so usage is counted.
4) For request apps call unlock_request, then poll unlock_status until granted.
5) history_stats and history_list summarize past sessions.

Docs:
- focusgate://docs/index
- focusgate://docs/timer
- focusgate://docs/apps
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "focusgate://docs/index",
		Name:        "docs_index",
		Title:       "focusgate docs index",
		Description: "Entry point: which tools exist and which doc to read next.",
		Content: `# focusgate: Docs Index

## Tools

- Timer: ` + "`timer_status`" + `, ` + "`timer_set_duration`" + `, ` + "`timer_start`" + `, ` + "`timer_pause`" + `, ` + "`timer_resume`" + `, ` + "`timer_reset`" + `.
- Apps: ` + "`app_open`" + `, ` + "`app_close`" + `, ` + "`app_status`" + `, ` + "`app_list`" + `, ` + "`app_set_limits`" + `.
- Unlock: ` + "`unlock_request`" + `, ` + "`unlock_status`" + `, ` + "`unlock_cancel`" + `.
- History: ` + "`history_list`" + `, ` + "`history_stats`" + `, ` + "`history_delete`" + `, ` + "`recent_activity`" + `.

## Docs

- ` + "`focusgate://docs/timer`" + ` covers timer phases and how sessions are recorded.
- ` + "`focusgate://docs/apps`" + ` covers app policies, usage cycles and unlock requests.
`,
	},
	{
		URI:         "focusgate://docs/timer",
		Name:        "docs_timer",
		Title:       "Timer and sessions",
		Description: "Timer phases, stopwatch mode, and how completed and canceled sessions are recorded.",
		Content: `# Timer and sessions

## Phases

- **idle**: shows the configured duration.
- **running**: a countdown shows the seconds left, rounded up. A stopwatch shows the seconds elapsed.
- **paused**: shows the frozen value. Resuming continues from it.

Pausing from idle or resuming while running changes nothing; the result reports ` + "`changed: false`" + `.
The duration can only change while idle (` + "`TIMER_ACTIVE`" + ` otherwise).

## Sessions

- A countdown that reaches zero is recorded as **completed**. The end time is the scheduled end even when the
  server notices late.
- ` + "`timer_reset`" + ` on a run with focus time records a **canceled** session.
- Focus time excludes pauses. Sessions under the minimum (60 seconds by default) are stored but excluded from
  ` + "`history_stats`" + `.
- Completed sessions add to the balance; canceled ones subtract. The balance never goes below zero.
`,
	},
	{
		URI:         "focusgate://docs/apps",
		Name:        "docs_apps",
		Title:       "App policies",
		Description: "Open, cycle, request and blocked apps; usage budgets, lockouts and unlock grants.",
		Content: `# App policies

## Cycle apps

Usage is counted when the app is closed. Once the used time reaches the budget the app locks for the lockout
length and the count restarts at zero, even if the last visit overshot the budget. A visit in progress is never
cut short; the lock applies to the next ` + "`app_open`" + `.

Budgets are at most 30 minutes and lockouts at least 60 minutes. ` + "`app_set_limits`" + ` clamps other values
and reports the adjustment.

## Request apps

1. ` + "`unlock_request`" + ` starts the mandatory wait. A second request while waiting or granted answers
   ` + "`already_pending`" + `.
2. Once the wait has passed the request is granted until requested time + wait + grant window.
3. After the window the request expires and a fresh request is needed.

## Blocked apps

Blocked apps are always denied with ` + "`PERMANENTLY_BLOCKED`" + ` and cannot be requested.

## Unknown apps

Apps that are not configured are open.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
