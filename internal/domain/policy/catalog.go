// Package policy classifies apps into the gate that controls them.
package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rpggio/focusgate/internal/domain/usage"
)

// Kind selects how access to an app is gated.
type Kind string

const (
	// KindOpen apps are never gated.
	KindOpen Kind = "open"
	// KindCycle apps alternate between an allowed budget and a lockout.
	KindCycle Kind = "cycle"
	// KindRequest apps require an unlock request and its mandatory wait.
	KindRequest Kind = "request"
	// KindBlocked apps are never unlockable.
	KindBlocked Kind = "blocked"
)

var (
	// ErrPermanentlyBlocked indicates the app is on the static block list.
	ErrPermanentlyBlocked = errors.New("app is permanently blocked")
	// ErrUnknownKind indicates an unrecognized policy name.
	ErrUnknownKind = errors.New("unknown app policy")
	// ErrWrongKind indicates an operation that does not apply to the app's policy.
	ErrWrongKind = errors.New("operation not supported by app policy")
)

// ParseKind parses a policy name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindOpen, KindCycle, KindRequest, KindBlocked:
		return k, nil
	case "":
		return KindOpen, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// App is one classified app.
type App struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Kind   Kind            `json:"policy"`
	Limits usage.AppConfig `json:"limits"`
}

// Catalog is the static classification of known apps.
type Catalog struct {
	apps     map[string]App
	defaults usage.AppConfig
}

// NewCatalog builds a catalog. Cycle apps without limits inherit defaults;
// every limit is clamped into the supported bounds.
func NewCatalog(apps []App, defaults usage.AppConfig) *Catalog {
	c := &Catalog{apps: make(map[string]App, len(apps)), defaults: defaults}
	for _, app := range apps {
		if app.Name == "" {
			app.Name = app.ID
		}
		app.Limits, _ = usage.Clamp(app.Limits, defaults)
		c.apps[app.ID] = app
	}
	return c
}

// Lookup returns the app with id. Unknown apps are open.
func (c *Catalog) Lookup(id string) App {
	if app, ok := c.apps[id]; ok {
		return app
	}
	return App{ID: id, Name: id, Kind: KindOpen, Limits: c.defaults}
}

// Known reports whether id is classified.
func (c *Catalog) Known(id string) bool {
	_, ok := c.apps[id]
	return ok
}

// Defaults returns the fallback usage limits.
func (c *Catalog) Defaults() usage.AppConfig {
	return c.defaults
}

// Apps lists the catalog sorted by id.
func (c *Catalog) Apps() []App {
	out := make([]App, 0, len(c.apps))
	for _, app := range c.apps {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Blocked reports whether id is on the permanent block list.
func (c *Catalog) Blocked(id string) bool {
	return c.Lookup(id).Kind == KindBlocked
}
