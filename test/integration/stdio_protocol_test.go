package integration_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func binaryPath(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/focusgate", "../../bin/focusgate"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("Server binary not found. Run 'go build -o bin/focusgate ./cmd/focusgate' first.")
	return ""
}

// TestStdioProtocolCompliance drives the built server with the SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	path := binaryPath(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path)
	cmd.Env = append(os.Environ(), "FOCUSGATE_DB_PATH=:memory:")

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "focusgate", initResult.ServerInfo.Name)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)
		names := map[string]bool{}
		for _, tool := range tools.Tools {
			names[tool.Name] = true
		}
		for _, name := range []string{"timer_status", "timer_start", "app_open", "unlock_request", "history_stats"} {
			require.True(t, names[name], "Missing expected tool: %s", name)
		}
	})

	t.Run("TimerStartAndReset", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "timer_start", Arguments: map[string]any{}})
		require.NoError(t, err)
		require.False(t, result.IsError, "timer_start returned error: %v", result)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "timer_reset", Arguments: map[string]any{}})
		require.NoError(t, err)
		require.False(t, result.IsError, "timer_reset returned error: %v", result)
	})

	t.Run("UnconfiguredAppIsOpen", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "app_open",
			Arguments: map[string]any{"app_id": "notes"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "unconfigured apps are open")
	})
}

// TestStdioProtocol_StdoutHygiene checks that stdout only carries JSON-RPC.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	path := binaryPath(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path)
	cmd.Env = append(os.Environ(), "FOCUSGATE_DB_PATH=:memory:", "FOCUSGATE_LOG_LEVEL=debug")

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"hygiene","version":"1.0.0"}}}` + "\n"
	_, err = stdin.Write([]byte(initialize))
	require.NoError(t, err)

	scanner := bufio.NewScanner(stdout)
	require.True(t, scanner.Scan(), "expected a response line")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg), "stdout line is not JSON: %s", scanner.Text())
	require.Equal(t, "2.0", msg["jsonrpc"])
	require.EqualValues(t, 1, msg["id"])
	require.NotNil(t, msg["result"])
}
