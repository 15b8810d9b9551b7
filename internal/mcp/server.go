package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/focus"
)

// FocusService defines the state owner operations needed by MCP.
type FocusService interface {
	Timer(ctx context.Context) (timer.View, error)
	SetDuration(ctx context.Context, seconds int) (focus.TimerResult, error)
	Start(ctx context.Context) (focus.TimerResult, error)
	Pause(ctx context.Context) (focus.TimerResult, error)
	Resume(ctx context.Context) (focus.TimerResult, error)
	Reset(ctx context.Context) (focus.TimerResult, error)

	OpenApp(ctx context.Context, appID string) (focus.AppView, error)
	CloseApp(ctx context.Context, appID string) (focus.AppView, error)
	AppStatus(ctx context.Context, appID string) (focus.AppView, error)
	Apps(ctx context.Context) ([]focus.AppView, error)
	SetAppLimits(ctx context.Context, appID string, limits usage.AppConfig) (focus.LimitsResult, error)

	RequestUnlock(ctx context.Context, appID string) (unlock.Status, error)
	CancelUnlock(ctx context.Context, appID string) error
	UnlockStatus(ctx context.Context, appID string) (unlock.Status, error)

	Sessions(ctx context.Context, opts history.ListOptions) ([]history.FocusSession, error)
	DeleteSession(ctx context.Context, id string) error
	Stats(ctx context.Context) (history.Stats, error)
	Balance(ctx context.Context) (int, error)
	RecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Config contains server configuration.
type Config struct {
	Service FocusService
	Presets []int
	Version string
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "focusgate",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Service, cfg.Presets)

	return server
}
