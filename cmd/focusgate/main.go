package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/focusgate/internal/config"
	"github.com/rpggio/focusgate/internal/focus"
	"github.com/rpggio/focusgate/internal/mcp"
	"github.com/rpggio/focusgate/internal/sqlite"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "focusgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	warnings := cfg.Normalize()

	// stdout carries JSON-RPC, so logs never go there.
	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	for _, w := range warnings {
		logger.Warn("config adjusted", "detail", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(ctx); err != nil {
		return err
	}

	svc := focus.NewService(sqlite.NewStateRepository(db), sqlite.NewActivityRepository(db), focus.Options{
		Catalog:                cfg.Catalog(),
		Unlock:                 cfg.UnlockPolicy(),
		Rewards:                &cfg.Rewards,
		DefaultDurationSeconds: cfg.Timer.DefaultDurationSeconds,
		MinCountableSeconds:    cfg.Timer.MinCountableSeconds,
		Logger:                 logger,
	})
	if err := svc.Load(ctx); err != nil {
		return err
	}
	svc.Subscribe(func(e focus.Event) {
		logger.Info("focus event", "type", e.Type, "app", e.AppID, "at", e.At)
	})

	scheduler := focus.NewScheduler(svc, cfg.Timer.TickInterval, logger)
	// Stops and drains the scheduler before db.Close runs.
	defer runBackground(ctx, logger, "scheduler", scheduler.Run)()

	server := mcp.NewServer(mcp.Config{
		Service: svc,
		Presets: cfg.Timer.Presets,
		Version: version,
		Logger:  logger,
	})

	logger.Info("starting stdio transport", "db", cfg.DB.Path, "apps", len(cfg.Apps))
	// Run returns when stdin closes or ctx is canceled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// runBackground runs fn in its own goroutine. The returned func cancels fn
// and blocks until it has returned.
func runBackground(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("background task failed", "task", name, "error", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
