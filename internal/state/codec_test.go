package state_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/timer"
	"github.com/rpggio/focusgate/internal/domain/unlock"
	"github.com/rpggio/focusgate/internal/domain/usage"
	"github.com/rpggio/focusgate/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := t0.Add(d)
	return &t
}

func populated() state.State {
	s := state.Default(1500)
	s.Timer, _ = timer.Start(s.Timer, t0)
	s.Timer, _ = timer.Pause(s.Timer, t0.Add(90*time.Second))
	s.AppTimers["video"] = usage.AppTimer{AppID: "video", Used: 4 * time.Minute, LastOpenedAt: at(time.Minute)}
	s.AppTimers["social"] = usage.AppTimer{AppID: "social", LockedUntil: at(time.Hour)}
	s.Unlocks["games"] = unlock.Request{AppID: "games", RequestedAt: t0, ExpiresAt: at(30 * time.Minute)}
	s.AppConfigs["video"] = usage.AppConfig{Allowed: 10 * time.Minute, Lock: 90 * time.Minute}
	s.Sessions = []history.FocusSession{{
		ID:                    "s1",
		StartTime:             t0.Add(-time.Hour),
		EndTime:               t0.Add(-35 * time.Minute),
		TargetDurationSeconds: 1500,
		ActualFocusSeconds:    1500,
		Status:                history.StatusCompleted,
		IsCounted:             true,
	}}
	s.Balance = 20
	return s
}

func TestCodec_RoundTrip(t *testing.T) {
	in := populated()

	data, err := state.Encode(in)
	require.NoError(t, err)

	res, err := state.Decode(data, state.Default(1500))
	require.NoError(t, err)
	require.False(t, res.Recovered(), "warnings: %v", res.Warnings)
	assert.Equal(t, in, res.State)
	assert.Equal(t, timer.PhasePaused, res.State.Timer.Phase())
}

func TestCodec_EncodeUsesMillis(t *testing.T) {
	s := state.Default(600)
	s.Timer, _ = timer.Start(s.Timer, t0)

	data, err := state.Encode(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, state.SchemaVersion, raw["version"])
	tm := raw["timer"].(map[string]any)
	assert.EqualValues(t, t0.Add(600*time.Second).UnixMilli(), tm["endTimestamp"])
	assert.Nil(t, tm["pausedRemainingSeconds"])
	assert.Equal(t, "countdown", tm["mode"])
}

func TestCodec_CorruptBlobYieldsDefaults(t *testing.T) {
	defaults := state.Default(1500)

	for name, blob := range map[string]string{
		"garbage":     "{not json",
		"array":       "[1,2,3]",
		"null":        "null",
		"empty":       "",
		"bad version": `{"version":99}`,
		"version str": `{"version":"one"}`,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := state.Decode([]byte(blob), defaults)
			require.ErrorIs(t, err, state.ErrCorrupt)
			assert.Equal(t, defaults, res.State)
			assert.True(t, res.Recovered())
		})
	}
}

func TestCodec_MissingFieldsDefaultSilently(t *testing.T) {
	res, err := state.Decode([]byte(`{"balance":7}`), state.Default(900))
	require.NoError(t, err)
	assert.False(t, res.Recovered())
	assert.Equal(t, 7, res.State.Balance)
	assert.Equal(t, 900, res.State.Timer.TotalSeconds)
	assert.Empty(t, res.State.Sessions)
}

func TestCodec_WrongTypedFieldOnlyDefaultsThatField(t *testing.T) {
	data, err := state.Encode(populated())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["appTimers"] = json.RawMessage(`"oops"`)
	data, err = json.Marshal(raw)
	require.NoError(t, err)

	res, err := state.Decode(data, state.Default(1500))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "appTimers")
	assert.Empty(t, res.State.AppTimers)
	assert.Equal(t, 20, res.State.Balance)
	assert.Len(t, res.State.Sessions, 1)
	assert.Equal(t, timer.PhasePaused, res.State.Timer.Phase())
}

func TestCodec_TimerInvariantViolation(t *testing.T) {
	for name, timerJSON := range map[string]string{
		"end and paused":          `{"mode":"countdown","totalDurationSeconds":600,"endTimestamp":1000,"pausedRemainingSeconds":30,"startedAt":0}`,
		"running with pause mark": `{"mode":"countdown","totalDurationSeconds":600,"endTimestamp":600000,"startedAt":0,"pausedAt":1000}`,
		"stopwatch pause mark":    `{"mode":"stopwatch","totalDurationSeconds":0,"startedAt":0,"pausedAt":1000}`,
	} {
		t.Run(name, func(t *testing.T) {
			blob := `{"version":1,"timer":` + timerJSON + `,"balance":3}`

			res, err := state.Decode([]byte(blob), state.Default(1500))
			require.NoError(t, err)
			require.Len(t, res.Warnings, 1)
			assert.Contains(t, res.Warnings[0], "timer")
			assert.Equal(t, timer.Idle(1500), res.State.Timer)
			assert.Equal(t, 3, res.State.Balance)
		})
	}
}

func TestCodec_TimerModeMismatch(t *testing.T) {
	blob := `{"timer":{"mode":"stopwatch","totalDurationSeconds":600}}`

	res, err := state.Decode([]byte(blob), state.Default(1500))
	require.NoError(t, err)
	assert.True(t, res.Recovered())
	assert.Equal(t, 1500, res.State.Timer.TotalSeconds)
}

func TestCodec_InvalidEntriesAreDropped(t *testing.T) {
	blob := `{
		"appTimers": {"ok": {"usedMs": 1000}, "neg": {"usedMs": -5}},
		"unlockRequests": {"games": {"requestedAt": 5000, "expiresAt": 1000}},
		"sessions": [
			{"id": "a", "startTime": 0, "endTime": 60000, "status": "completed", "isCounted": true},
			{"id": "b", "startTime": 0, "endTime": 60000, "status": "abandoned"},
			{"id": "", "startTime": 0, "endTime": 1, "status": "canceled"}
		],
		"balance": -3
	}`

	res, err := state.Decode([]byte(blob), state.Default(1500))
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 5)
	assert.Contains(t, res.State.AppTimers, "ok")
	assert.NotContains(t, res.State.AppTimers, "neg")
	assert.Empty(t, res.State.Unlocks)
	require.Len(t, res.State.Sessions, 1)
	assert.Equal(t, "a", res.State.Sessions[0].ID)
	assert.Equal(t, 0, res.State.Balance)
}

func TestCodec_AppConfigsAreClamped(t *testing.T) {
	blob := `{"appConfigs": {"video": {"allowedMs": 7200000, "lockMs": 60000}}}`

	res, err := state.Decode([]byte(blob), state.Default(1500))
	require.NoError(t, err)
	assert.True(t, res.Recovered())
	assert.Equal(t, usage.AppConfig{Allowed: usage.MaxAllowed, Lock: usage.MinLock}, res.State.AppConfigs["video"])
}

func TestCodec_UnknownKeysIgnored(t *testing.T) {
	res, err := state.Decode([]byte(`{"version":1,"tasks":[1,2],"balance":4}`), state.Default(1500))
	require.NoError(t, err)
	assert.False(t, res.Recovered())
	assert.Equal(t, 4, res.State.Balance)
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := populated()
	c := s.Clone()
	c.AppTimers["video"] = usage.AppTimer{AppID: "video"}
	c.Sessions[0].ID = "changed"
	c.AppConfigs["x"] = usage.AppConfig{}

	assert.Equal(t, 4*time.Minute, s.AppTimers["video"].Used)
	assert.Equal(t, "s1", s.Sessions[0].ID)
	assert.NotContains(t, s.AppConfigs, "x")
}
