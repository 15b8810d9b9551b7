package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/policy"
	"github.com/rpggio/focusgate/internal/domain/reward"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	DB      DBConfig       `yaml:"db"`
	Log     LogConfig      `yaml:"log"`
	Timer   TimerConfig    `yaml:"timer"`
	Usage   UsageConfig    `yaml:"usage"`
	Unlock  UnlockConfig   `yaml:"unlock"`
	Rewards reward.Amounts `yaml:"rewards"`
	Apps    []AppConfig    `yaml:"apps"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TimerConfig struct {
	DefaultDurationSeconds int           `yaml:"default_duration_seconds"`
	Presets                []int         `yaml:"presets"`
	TickInterval           time.Duration `yaml:"tick_interval"`
	MinCountableSeconds    int           `yaml:"min_countable_seconds"`
}

type UsageConfig struct {
	DefaultAllowed time.Duration `yaml:"default_allowed"`
	DefaultLock    time.Duration `yaml:"default_lock"`
}

type UnlockConfig struct {
	MinWait     time.Duration `yaml:"min_wait"`
	GrantWindow time.Duration `yaml:"grant_window"`
}

// AppConfig classifies one app. Allowed and Lock apply to cycle apps and
// fall back to the usage defaults when unset.
type AppConfig struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Policy  string        `yaml:"policy"`
	Allowed time.Duration `yaml:"allowed"`
	Lock    time.Duration `yaml:"lock"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB: DBConfig{
			Path: "focusgate.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Timer: TimerConfig{
			DefaultDurationSeconds: 1500,
			Presets:                []int{900, 1500, 2700, 3600},
			TickInterval:           200 * time.Millisecond,
			MinCountableSeconds:    history.DefaultMinCountableSeconds,
		},
		Usage: UsageConfig{
			DefaultAllowed: usage.DefaultConfig.Allowed,
			DefaultLock:    usage.DefaultConfig.Lock,
		},
		Unlock: UnlockConfig{
			MinWait:     15 * time.Minute,
			GrantWindow: 15 * time.Minute,
		},
		Rewards: reward.DefaultAmounts,
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("FOCUSGATE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("FOCUSGATE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FOCUSGATE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("FOCUSGATE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if tick := os.Getenv("FOCUSGATE_TICK_INTERVAL"); tick != "" {
		d, err := time.ParseDuration(tick)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FOCUSGATE_TICK_INTERVAL: %w", err)
		}
		cfg.Timer.TickInterval = d
	}
	if wait := os.Getenv("FOCUSGATE_MIN_WAIT"); wait != "" {
		d, err := time.ParseDuration(wait)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FOCUSGATE_MIN_WAIT: %w", err)
		}
		cfg.Unlock.MinWait = d
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Normalize clamps out-of-range values in place and returns a warning for
// every adjustment. Invalid configuration is never fatal.
func (c *Config) Normalize() []string {
	def := Default()
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if c.DB.Path == "" {
		c.DB.Path = def.DB.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if d := c.Timer.DefaultDurationSeconds; d < 0 || d > timer.MaxDurationSeconds {
		warnf("timer.default_duration_seconds %d out of range, using %d", d, def.Timer.DefaultDurationSeconds)
		c.Timer.DefaultDurationSeconds = def.Timer.DefaultDurationSeconds
	}
	presets := c.Timer.Presets[:0:0]
	for _, p := range c.Timer.Presets {
		if p <= 0 || p > timer.MaxDurationSeconds {
			warnf("timer.presets: dropping %d", p)
			continue
		}
		presets = append(presets, p)
	}
	if len(presets) == 0 {
		presets = def.Timer.Presets
	}
	c.Timer.Presets = presets
	if c.Timer.TickInterval <= 0 {
		warnf("timer.tick_interval %s not positive, using %s", c.Timer.TickInterval, def.Timer.TickInterval)
		c.Timer.TickInterval = def.Timer.TickInterval
	}
	if c.Timer.MinCountableSeconds < 0 {
		warnf("timer.min_countable_seconds %d negative, using %d", c.Timer.MinCountableSeconds, def.Timer.MinCountableSeconds)
		c.Timer.MinCountableSeconds = def.Timer.MinCountableSeconds
	}

	limits, err := usage.Clamp(c.UsageDefaults(), usage.DefaultConfig)
	if err != nil {
		warnf("usage: %v", err)
	}
	c.Usage.DefaultAllowed, c.Usage.DefaultLock = limits.Allowed, limits.Lock

	if c.Unlock.MinWait <= 0 {
		warnf("unlock.min_wait %s not positive, using %s", c.Unlock.MinWait, def.Unlock.MinWait)
		c.Unlock.MinWait = def.Unlock.MinWait
	}
	if c.Unlock.GrantWindow <= 0 {
		warnf("unlock.grant_window %s not positive, using %s", c.Unlock.GrantWindow, def.Unlock.GrantWindow)
		c.Unlock.GrantWindow = def.Unlock.GrantWindow
	}

	seen := make(map[string]bool, len(c.Apps))
	apps := c.Apps[:0:0]
	for _, app := range c.Apps {
		if app.ID == "" {
			warnf("apps: dropping entry without id")
			continue
		}
		if seen[app.ID] {
			warnf("apps.%s: duplicate entry dropped", app.ID)
			continue
		}
		if _, err := policy.ParseKind(app.Policy); err != nil {
			warnf("apps.%s: %v", app.ID, err)
			continue
		}
		if app.Allowed != 0 || app.Lock != 0 {
			clamped, err := usage.Clamp(usage.AppConfig{Allowed: app.Allowed, Lock: app.Lock}, limits)
			if err != nil {
				warnf("apps.%s: %v", app.ID, err)
			}
			app.Allowed, app.Lock = clamped.Allowed, clamped.Lock
		}
		seen[app.ID] = true
		apps = append(apps, app)
	}
	c.Apps = apps

	return warnings
}

// UsageDefaults returns the fallback per-app limits.
func (c Config) UsageDefaults() usage.AppConfig {
	return usage.AppConfig{Allowed: c.Usage.DefaultAllowed, Lock: c.Usage.DefaultLock}
}

// UnlockPolicy returns the unlock workflow timing.
func (c Config) UnlockPolicy() unlock.Policy {
	return unlock.Policy{MinWait: c.Unlock.MinWait, GrantWindow: c.Unlock.GrantWindow}
}

// Catalog builds the app classification. Call Normalize first; entries
// with an unknown policy are skipped.
func (c Config) Catalog() *policy.Catalog {
	apps := make([]policy.App, 0, len(c.Apps))
	for _, a := range c.Apps {
		kind, err := policy.ParseKind(a.Policy)
		if err != nil {
			continue
		}
		apps = append(apps, policy.App{
			ID:     a.ID,
			Name:   a.Name,
			Kind:   kind,
			Limits: usage.AppConfig{Allowed: a.Allowed, Lock: a.Lock},
		})
	}
	return policy.NewCatalog(apps, c.UsageDefaults())
}
