package focus

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/focusgate/internal/domain/activity"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
)

// OpenApp asks to use an app. Blocked apps are always denied, request apps
// need an active grant, and cycle apps are denied inside their lock window
// with a *usage.LockedError.
func (s *Service) OpenApp(ctx context.Context, appID string) (AppView, error) {
	if appID == "" {
		return AppView{}, ErrInvalidInput
	}
	var view AppView
	err := s.mutate(ctx, func(t *txn) error {
		app := s.catalog.Lookup(appID)
		switch app.Kind {
		case policy.KindBlocked:
			s.logger.Info("open denied", "app", appID, "reason", "blocked")
			return policy.ErrPermanentlyBlocked
		case policy.KindRequest:
			if !unlock.IsUsable(t.Unlocks, appID, t.now) {
				s.logger.Info("open denied", "app", appID, "reason", "no grant")
				return unlock.ErrNotGranted
			}
		case policy.KindCycle:
			timers, err := usage.Open(t.AppTimers, appID, t.now)
			if err != nil {
				s.logger.Info("open denied", "app", appID, "reason", "locked")
				return err
			}
			t.AppTimers = timers
		}
		t.changed = true
		t.log(activity.ActivityEntry{
			ActivityType: activity.TypeAppOpened,
			AppID:        optional(appID),
			Summary:      fmt.Sprintf("App %s opened", appID),
		})
		view = s.appView(t, app)
		return nil
	})
	return view, err
}

// CloseApp stops accruing usage. For cycle apps the elapsed time is added
// to the cycle and the app locks once the budget is used up.
func (s *Service) CloseApp(ctx context.Context, appID string) (AppView, error) {
	if appID == "" {
		return AppView{}, ErrInvalidInput
	}
	var view AppView
	err := s.mutate(ctx, func(t *txn) error {
		app := s.catalog.Lookup(appID)
		if app.Kind == policy.KindCycle {
			if current, ok := t.AppTimers[appID]; ok && current.Open() {
				used := current.Used + max(t.now.Sub(*current.LastOpenedAt), 0)
				timers, locked := usage.Close(t.AppTimers, appID, s.limits(t, app), t.now)
				t.AppTimers = timers
				t.changed = true
				t.log(activity.ActivityEntry{
					ActivityType: activity.TypeAppClosed,
					AppID:        optional(appID),
					Summary:      fmt.Sprintf("App %s closed", appID),
					Details:      details(map[string]any{"used_ms": used.Milliseconds(), "locked": locked}),
				})
				if locked {
					until := timers[appID].LockedUntil
					t.emit(Event{Type: EventAppLocked, At: t.now, AppID: appID, Until: until})
					s.logger.Info("app locked", "app", appID, "until", until)
				}
			}
		}
		view = s.appView(t, app)
		return nil
	})
	return view, err
}

// AppStatus reports the gate state of an app.
func (s *Service) AppStatus(ctx context.Context, appID string) (AppView, error) {
	if appID == "" {
		return AppView{}, ErrInvalidInput
	}
	var view AppView
	err := s.mutate(ctx, func(t *txn) error {
		view = s.appView(t, s.catalog.Lookup(appID))
		return nil
	})
	return view, err
}

// Apps reports every classified app.
func (s *Service) Apps(ctx context.Context) ([]AppView, error) {
	var views []AppView
	err := s.mutate(ctx, func(t *txn) error {
		for _, app := range s.catalog.Apps() {
			views = append(views, s.appView(t, app))
		}
		return nil
	})
	return views, err
}

// SetAppLimits stores per-app limits, clamped into the supported bounds.
// Clamping is reported in the result, never as an error.
func (s *Service) SetAppLimits(ctx context.Context, appID string, limits usage.AppConfig) (LimitsResult, error) {
	if appID == "" {
		return LimitsResult{}, ErrInvalidInput
	}
	if s.catalog.Blocked(appID) {
		return LimitsResult{}, policy.ErrPermanentlyBlocked
	}
	res := LimitsResult{AppID: appID}
	err := s.mutate(ctx, func(t *txn) error {
		clamped, err := usage.Clamp(limits, s.limits(t, s.catalog.Lookup(appID)))
		if err != nil {
			res.Adjusted = err.Error()
			s.logger.Warn("app limits clamped", "app", appID, "detail", err)
		}
		t.AppConfigs[appID] = clamped
		t.changed = true
		res.Limits = clamped
		if app := s.catalog.Lookup(appID); app.Kind == policy.KindCycle {
			s.reconcile(t, app)
		}
		return nil
	})
	return res, err
}

// RequestUnlock opens an unlock ticket for a request app. A duplicate
// request returns the current status together with unlock.ErrAlreadyPending.
func (s *Service) RequestUnlock(ctx context.Context, appID string) (unlock.Status, error) {
	if appID == "" {
		return unlock.Status{}, ErrInvalidInput
	}
	switch s.catalog.Lookup(appID).Kind {
	case policy.KindBlocked:
		return unlock.Status{}, policy.ErrPermanentlyBlocked
	case policy.KindRequest:
	default:
		return unlock.Status{}, fmt.Errorf("%w: unlock requests apply to request apps", policy.ErrWrongKind)
	}

	var st unlock.Status
	var pending bool
	err := s.mutate(ctx, func(t *txn) error {
		reqs, err := unlock.RequestUnlock(t.Unlocks, appID, t.now, s.unlock)
		if errors.Is(err, unlock.ErrAlreadyPending) {
			pending = true
			st = unlock.StatusOf(t.Unlocks, appID, t.now, s.unlock)
			return nil
		}
		if err != nil {
			return err
		}
		t.Unlocks = reqs
		t.changed = true
		st = unlock.StatusOf(reqs, appID, t.now, s.unlock)
		t.log(activity.ActivityEntry{
			ActivityType: activity.TypeUnlockRequested,
			AppID:        optional(appID),
			Summary:      fmt.Sprintf("Unlock requested for %s", appID),
			Details:      details(st),
		})
		return nil
	})
	if err == nil && pending {
		err = unlock.ErrAlreadyPending
	}
	return st, err
}

// CancelUnlock withdraws a waiting or granted ticket.
func (s *Service) CancelUnlock(ctx context.Context, appID string) error {
	if appID == "" {
		return ErrInvalidInput
	}
	return s.mutate(ctx, func(t *txn) error {
		reqs, err := unlock.Cancel(t.Unlocks, appID)
		if err != nil {
			return err
		}
		t.Unlocks = reqs
		t.changed = true
		t.log(activity.ActivityEntry{
			ActivityType: activity.TypeUnlockCanceled,
			AppID:        optional(appID),
			Summary:      fmt.Sprintf("Unlock canceled for %s", appID),
		})
		return nil
	})
}

// UnlockStatus describes the ticket for an app.
func (s *Service) UnlockStatus(ctx context.Context, appID string) (unlock.Status, error) {
	if appID == "" {
		return unlock.Status{}, ErrInvalidInput
	}
	var st unlock.Status
	err := s.mutate(ctx, func(t *txn) error {
		st = unlock.StatusOf(t.Unlocks, appID, t.now, s.unlock)
		return nil
	})
	return st, err
}

// reconcile locks a closed cycle app whose recorded usage already reaches
// its effective budget.
func (s *Service) reconcile(t *txn, app policy.App) {
	timers, locked := usage.Reconcile(t.AppTimers, app.ID, s.limits(t, app), t.now)
	if !locked {
		return
	}
	t.AppTimers = timers
	until := timers[app.ID].LockedUntil
	t.emit(Event{Type: EventAppLocked, At: t.now, AppID: app.ID, Until: until})
	s.logger.Info("app locked", "app", app.ID, "until", until, "reason", "usage over budget")
}

// limits resolves the effective limits: stored overrides first, then the
// catalog entry.
func (s *Service) limits(t *txn, app policy.App) usage.AppConfig {
	if cfg, ok := t.AppConfigs[app.ID]; ok {
		return cfg
	}
	return app.Limits
}

func (s *Service) appView(t *txn, app policy.App) AppView {
	view := AppView{
		ID:     app.ID,
		Name:   app.Name,
		Policy: app.Kind,
		Limits: s.limits(t, app),
	}
	switch app.Kind {
	case policy.KindOpen:
		view.Accessible = true
	case policy.KindCycle:
		st := usage.StatusOf(t.AppTimers, app.ID, view.Limits, t.now)
		view.Usage = &st
		view.Accessible = !st.Locked
	case policy.KindRequest:
		st := unlock.StatusOf(t.Unlocks, app.ID, t.now, s.unlock)
		view.Unlock = &st
		view.Accessible = unlock.IsUsable(t.Unlocks, app.ID, t.now)
	}
	return view
}
