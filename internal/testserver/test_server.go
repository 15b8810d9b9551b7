package testserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/focusgate/internal/clock"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/focus"
	"github.com/rpggio/focusgate/internal/mcp"
	"github.com/rpggio/focusgate/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// Start is the manual clock's initial instant.
var Start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// TestServer wires a focus service on an in-memory database to an MCP
// client session over in-memory transports.
type TestServer struct {
	DB      *sqlite.DB
	Clock   *clock.Manual
	Service *focus.Service
	Session *sdkmcp.ClientSession
}

// Apps is the catalog every test server starts with.
func Apps() []policy.App {
	return []policy.App{
		{ID: "video", Name: "Video", Kind: policy.KindCycle, Limits: usage.AppConfig{Allowed: 30 * time.Minute, Lock: 60 * time.Minute}},
		{ID: "games", Name: "Games", Kind: policy.KindRequest},
		{ID: "casino", Name: "Casino", Kind: policy.KindBlocked},
	}
}

func New(t *testing.T) *TestServer {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx))

	clk := clock.NewManual(Start)
	svc := focus.NewService(sqlite.NewStateRepository(db), sqlite.NewActivityRepository(db), focus.Options{
		Clock:                  clk,
		Catalog:                policy.NewCatalog(Apps(), usage.DefaultConfig),
		Unlock:                 unlock.Policy{MinWait: 15 * time.Minute, GrantWindow: 15 * time.Minute},
		DefaultDurationSeconds: 1500,
	})
	require.NoError(t, svc.Load(ctx))

	server := mcp.NewServer(mcp.Config{Service: svc, Presets: []int{900, 1500, 3000}})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
		_ = db.Close()
	})

	return &TestServer{DB: db, Clock: clk, Service: svc, Session: session}
}

// CallTool calls a tool and returns its text payload and error flag.
func (ts *TestServer) CallTool(t *testing.T, name string, args any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := ts.Session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "tool %s", name)

	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), res.IsError
}

// Call calls a tool that must succeed and decodes its payload into out.
func (ts *TestServer) Call(t *testing.T, name string, args, out any) {
	t.Helper()
	text, isErr := ts.CallTool(t, name, args)
	require.False(t, isErr, "tool %s failed: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out), "tool %s payload: %s", name, text)
	}
}

// CallError calls a tool that must fail with a mapped error.
func (ts *TestServer) CallError(t *testing.T, name string, args any) mcp.APIError {
	t.Helper()
	text, isErr := ts.CallTool(t, name, args)
	require.True(t, isErr, "tool %s should fail, got %s", name, text)
	var apiErr mcp.APIError
	require.NoError(t, json.Unmarshal([]byte(text), &apiErr), "tool %s error: %s", name, text)
	return apiErr
}
