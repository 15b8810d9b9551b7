package focus

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval is the evaluation cadence when none is configured.
const DefaultTickInterval = 200 * time.Millisecond

// Scheduler drives Service.Tick on a fixed cadence. It is the only
// background source of state changes.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for svc.
func NewScheduler(svc *Service, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{svc: svc, interval: interval, logger: logger}
}

// Run ticks until ctx is done. Tick failures are logged and retried on the
// next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			events, err := s.svc.Tick(ctx)
			if err != nil {
				s.logger.Error("tick failed", "error", err)
				continue
			}
			for _, e := range events {
				s.logger.Debug("tick event", "type", e.Type, "app", e.AppID)
			}
		}
	}
}
