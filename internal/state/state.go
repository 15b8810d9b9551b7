// Package state defines the persisted application state and its JSON blob
// encoding. Decoding never trusts a field whose shape or invariants do not
// validate; such fields fall back to their defaults.
package state

import (
	"errors"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
)

// SchemaVersion is the blob version written by Encode.
const SchemaVersion = 1

// ErrCorrupt indicates a blob that could not be used at all.
var ErrCorrupt = errors.New("persisted state is corrupt")

// State is the whole persisted application state.
type State struct {
	Timer      timer.State
	AppTimers  usage.Timers
	Unlocks    unlock.Requests
	AppConfigs map[string]usage.AppConfig
	Sessions   []history.FocusSession
	Balance    int
}

// Default returns the first-run state with the given timer duration.
func Default(totalSeconds int) State {
	return State{
		Timer:      timer.Idle(totalSeconds),
		AppTimers:  usage.Timers{},
		Unlocks:    unlock.Requests{},
		AppConfigs: map[string]usage.AppConfig{},
		Sessions:   []history.FocusSession{},
	}
}

// Clone copies the collections so the result can be modified without
// touching s.
func (s State) Clone() State {
	out := s
	out.AppTimers = s.AppTimers.Clone()
	out.Unlocks = s.Unlocks.Clone()
	out.AppConfigs = make(map[string]usage.AppConfig, len(s.AppConfigs))
	for k, v := range s.AppConfigs {
		out.AppConfigs[k] = v
	}
	out.Sessions = append([]history.FocusSession{}, s.Sessions...)
	return out
}

// Result is the outcome of Decode. Warnings name every field that fell
// back to its default.
type Result struct {
	State    State
	Warnings []string
}

// Recovered reports whether any field was replaced.
func (r Result) Recovered() bool {
	return len(r.Warnings) > 0
}
