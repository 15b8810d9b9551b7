// Package focus owns the application state. Every operation runs the
// time-driven evaluation first, applies its change to a copy, persists the
// copy and only then makes it current.
package focus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rpggio/focusgate/internal/clock"
	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/reward"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/repository"
	"github.com/rpggio/focusgate/internal/state"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Clock                  clock.Clock
	Catalog                *policy.Catalog
	Unlock                 unlock.Policy
	Rewards                *reward.Amounts
	DefaultDurationSeconds int
	MinCountableSeconds    int
	Logger                 *slog.Logger
}

// Service is the single owner and mutator of the persisted state.
type Service struct {
	mu       sync.Mutex
	current  state.State
	loaded   bool
	defaults state.State

	store      repository.StateRepository
	activities *activity.Service
	clock      clock.Clock
	catalog    *policy.Catalog
	unlock     unlock.Policy
	rewards    reward.Amounts
	recorder   *history.Recorder
	logger     *slog.Logger

	subsMu      sync.RWMutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// NewService creates a new focus service. Call Load before use.
func NewService(store repository.StateRepository, activities repository.ActivityRepository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Catalog == nil {
		opts.Catalog = policy.NewCatalog(nil, usage.DefaultConfig)
	}
	if opts.Unlock.MinWait <= 0 {
		opts.Unlock.MinWait = 15 * time.Minute
	}
	if opts.Unlock.GrantWindow <= 0 {
		opts.Unlock.GrantWindow = 15 * time.Minute
	}
	rewards := reward.DefaultAmounts
	if opts.Rewards != nil {
		rewards = *opts.Rewards
	}
	duration := opts.DefaultDurationSeconds
	if duration < 0 || duration > timer.MaxDurationSeconds {
		duration = 0
	}

	return &Service{
		defaults:    state.Default(duration),
		store:       store,
		activities:  activity.NewService(activities, logger),
		clock:       opts.Clock,
		catalog:     opts.Catalog,
		unlock:      opts.Unlock,
		rewards:     rewards,
		recorder:    history.NewRecorder(opts.MinCountableSeconds),
		logger:      logger,
		subscribers: map[int]func(Event){},
	}
}

// Load reads the persisted state once. An absent blob starts from defaults;
// an unusable blob or unusable fields fall back to defaults, are logged, and
// recorded in the activity log.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.store.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.current = s.defaults.Clone()
		s.loaded = true
		s.logger.Info("no persisted state, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	res, decodeErr := state.Decode(blob, s.defaults)
	s.current = res.State
	s.loaded = true
	if !res.Recovered() {
		return nil
	}

	if decodeErr != nil {
		s.logger.Warn("persisted state unreadable, using defaults", "error", decodeErr)
	} else {
		s.logger.Warn("persisted state partially recovered", "fields", res.Warnings)
	}
	if err := s.save(ctx, s.current); err != nil {
		return err
	}
	s.record(ctx, []activity.ActivityEntry{{
		ActivityType: activity.TypeStateRecovered,
		Summary:      "Persisted state recovered with defaults",
		Details:      details(map[string]any{"warnings": res.Warnings, "corrupt": decodeErr != nil}),
		CreatedAt:    s.now(),
	}})
	return nil
}

// Subscribe registers fn for every emitted event. Events are delivered
// synchronously after the state change is committed. The returned func
// removes the subscription.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subscribers, id)
	}
}

// Snapshot returns a copy of the current state after evaluation.
func (s *Service) Snapshot(ctx context.Context) (state.State, error) {
	var out state.State
	err := s.mutate(ctx, func(t *txn) error {
		out = t.State.Clone()
		return nil
	})
	return out, err
}

// Tick runs the time-driven evaluation and returns the emitted events.
func (s *Service) Tick(ctx context.Context) ([]Event, error) {
	var events []Event
	err := s.mutate(ctx, func(t *txn) error {
		events = append(events, t.events...)
		return nil
	})
	return events, err
}

// txn is the working copy of one operation.
type txn struct {
	state.State
	now     time.Time
	changed bool
	events  []Event
	entries []activity.ActivityEntry
}

func (t *txn) emit(e Event) {
	t.changed = true
	t.events = append(t.events, e)
	entry := activity.ActivityEntry{
		ActivityType: activity.ActivityType(e.Type),
		AppID:        optional(e.AppID),
		Summary:      eventSummary(e),
		Details:      details(e),
	}
	if e.Session != nil {
		entry.SessionID = optional(e.Session.ID)
	}
	t.log(entry)
}

func (t *txn) log(entry activity.ActivityEntry) {
	entry.CreatedAt = t.now
	t.entries = append(t.entries, entry)
}

// mutate evaluates time-driven transitions, applies fn and commits the
// result. When fn fails nothing is committed.
func (s *Service) mutate(ctx context.Context, fn func(t *txn) error) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}

	t := &txn{State: s.current.Clone(), now: s.now()}
	s.advance(t)
	if err := fn(t); err != nil {
		s.mu.Unlock()
		return err
	}
	if t.changed {
		if err := s.save(ctx, t.State); err != nil {
			s.mu.Unlock()
			return err
		}
		s.current = t.State
	}
	s.mu.Unlock()

	s.publish(t.events)
	s.record(ctx, t.entries)
	return nil
}

// advance completes expired countdowns, clears elapsed locks and grants
// unlock requests whose wait has passed.
func (s *Service) advance(t *txn) {
	if next, run := timer.Tick(t.Timer, t.now); run != nil {
		t.Timer = next
		s.finishRun(t, *run)
	}

	if timers, changed := usage.Sweep(t.AppTimers, t.now); changed {
		t.AppTimers = timers
		t.changed = true
	}
	for _, id := range slices.Sorted(maps.Keys(t.AppTimers)) {
		if app := s.catalog.Lookup(id); app.Kind == policy.KindCycle {
			s.reconcile(t, app)
		}
	}

	reqs, granted, changed := unlock.Evaluate(t.Unlocks, t.now, s.unlock)
	if changed {
		t.Unlocks = reqs
		t.changed = true
	}
	for _, id := range granted {
		t.emit(Event{Type: EventUnlockGranted, At: t.now, AppID: id, Until: reqs[id].ExpiresAt})
		s.logger.Info("unlock granted", "app", id, "until", reqs[id].ExpiresAt)
	}
}

// finishRun records a finished run and applies its reward.
func (s *Service) finishRun(t *txn, run timer.Run) history.FocusSession {
	session := s.recorder.FromRun(run)
	t.Sessions = history.Append(t.Sessions, session)
	t.Balance = reward.Apply(t.Balance, session, s.rewards)

	typ := EventTimerCompleted
	if session.Status == history.StatusCanceled {
		typ = EventTimerCanceled
	}
	t.emit(Event{Type: typ, At: t.now, Session: &session})
	s.logger.Info("focus session recorded",
		"status", session.Status,
		"actual_seconds", session.ActualFocusSeconds,
		"counted", session.IsCounted,
	)
	return session
}

func (s *Service) save(ctx context.Context, st state.State) error {
	blob, err := state.Encode(st)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, blob); err != nil {
		s.logger.Error("persisting state failed", "error", err)
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func (s *Service) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.subsMu.RLock()
	subs := make([]func(Event), 0, len(s.subscribers))
	for i := 0; i < s.nextSubID; i++ {
		if fn, ok := s.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.subsMu.RUnlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// record appends entries to the activity log. Failures are logged only;
// the state change they describe is already committed.
func (s *Service) record(ctx context.Context, entries []activity.ActivityEntry) {
	for i := range entries {
		if err := s.activities.LogActivity(ctx, &entries[i]); err != nil {
			s.logger.Warn("activity log write failed", "type", entries[i].ActivityType, "error", err)
		}
	}
}

// RecentActivity lists the activity log newest first.
func (s *Service) RecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return s.activities.GetRecentActivity(ctx, opts)
}

// now is truncated to milliseconds so persisted instants round-trip exactly.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func details(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func eventSummary(e Event) string {
	switch e.Type {
	case EventTimerCompleted:
		return "Focus session completed"
	case EventTimerCanceled:
		return "Focus session canceled"
	case EventAppLocked:
		return fmt.Sprintf("App %s locked", e.AppID)
	case EventUnlockGranted:
		return fmt.Sprintf("Unlock granted for %s", e.AppID)
	default:
		return string(e.Type)
	}
}
