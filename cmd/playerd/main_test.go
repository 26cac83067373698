package main

import (
	"context"
	"testing"
	"time"

	"playerkit/internal/config"
	"playerkit/internal/plugins/eventstream"
	"playerkit/internal/runloop"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"
)

const testConfig = `sources:
  - "http://media.local/one.mp4"
  - "http://media.local/two.m3u8"
options:
  autoplay: false
engine:
  duration: 5
  tick: 100ms
  load_delay: 10ms
api:
  port: 18081
`

func testSettings(t *testing.T, env map[string]string) Settings {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/playerd.yaml", []byte(testConfig), 0644))
	return Settings{
		ConfigPath: "/playerd.yaml",
		Fs:         fs,
		Getenv:     func(key string) string { return env[key] },
	}
}

// TestAppGraphValidity verifies that the dependency graph is resolvable.
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(AppOptions(testSettings(t, nil)))
	assert.NoError(t, err, "dependency graph is not valid")
}

func TestNewConfig_Precedence(t *testing.T) {
	settings := testSettings(t, map[string]string{
		config.EnvAPIPort:  "9000",
		config.EnvLogLevel: "debug",
	})

	cfg, err := newConfig(settings)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.API.Port, "environment beats file")
	assert.Equal(t, zapcore.DebugLevel, cfg.Level())
	assert.Len(t, cfg.Sources, 2)

	settings.Port = 9100
	settings.LogLevel = "error"
	settings.Sources = []string{"http://media.local/other.mp4"}
	cfg, err = newConfig(settings)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.API.Port, "flags beat environment")
	assert.Equal(t, zapcore.ErrorLevel, cfg.Level())
	assert.Equal(t, []string{"http://media.local/other.mp4"}, cfg.Sources)
}

func TestNewConfig_InvalidFlag(t *testing.T) {
	settings := testSettings(t, nil)
	settings.LogLevel = "shouty"

	_, err := newConfig(settings)
	assert.ErrorContains(t, err, "log_level")
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Development = true

	logger, err := newLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("Test logger initialization")
}

// TestEndToEndStartup starts the player, drives one control request and stops it
func TestEndToEndStartup(t *testing.T) {
	testCtx, testCancel := context.WithCancel(context.Background())
	t.Cleanup(testCancel)
	var (
		player *Player
		loop   *runloop.Loop
		state  *eventstream.State
	)
	app := fx.New(
		AppOptions(testSettings(t, nil)),
		fx.NopLogger,
		fx.Populate(&player, &loop, &state),
	)
	require.NoError(t, app.Err())

	require.NoError(t, app.Start(testCtx))

	snap := state.Snapshot()
	assert.Equal(t, 0, snap.ActiveIndex)
	require.Len(t, snap.Containers, 2)
	assert.Equal(t, "progressive", snap.Containers[0].Playback)
	assert.Equal(t, "adaptive", snap.Containers[1].Playback)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var (
		active  int
		nextErr error
	)
	require.NoError(t, loop.Call(ctx, func() {
		nextErr = player.Current().Next()
		active = player.Current().ActiveIndex()
	}))
	require.NoError(t, nextErr)
	assert.Equal(t, 1, active)

	require.NoError(t, app.Stop(testCtx))
	assert.Nil(t, player.core)
	assert.Equal(t, -1, state.Snapshot().ActiveIndex)
}
