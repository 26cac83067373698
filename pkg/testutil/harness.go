// Package testutil provides testing utilities for player plugins and hosts:
// stub playbacks and plugins, event recorders and a ready-made environment
// running the simulated engine on a mock clock.
package testutil

import (
	"fmt"
	"time"

	"playerkit/internal/clock"
	"playerkit/internal/engine"
	"playerkit/internal/loader"
	"playerkit/internal/playback"
	"playerkit/internal/runloop"

	"go.uber.org/zap"
)

// Epoch is the time the mock clock of a TestEnv starts at
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestEnv provides a complete environment for player integration tests.
// Playbacks run the simulated engine on a mock clock and engine callbacks
// run inline, so a test drives time explicitly with Advance.
type TestEnv struct {
	Clock    *clock.MockClock
	Loader   *loader.Loader
	Logger   *zap.Logger
	Executor runloop.Executor
	Engine   engine.SimulatedConfig
}

// NewTestEnv creates a test environment whose loader knows the built-in
// progressive and adaptive playbacks.
//
// Example usage:
//
//	env, err := testutil.NewTestEnv(engine.DefaultSimulatedConfig())
//	if err != nil {
//	    t.Fatal(err)
//	}
//	env.Loader.RegisterContainerPlugin(myPluginInfo)
//	c := container.New(env.Loader, opts, env.Logger)
//	env.Advance(time.Second)
func NewTestEnv(cfg engine.SimulatedConfig) (*TestEnv, error) {
	logger := zap.NewNop()
	clk := clock.NewMockClock(Epoch)
	exec := runloop.Inline{}

	l := loader.New(logger)
	provider := engine.SimulatedProvider(clk, cfg, logger)
	if err := playback.RegisterDefaults(l.Playbacks, provider, exec, logger); err != nil {
		return nil, fmt.Errorf("failed to register playbacks: %w", err)
	}

	return &TestEnv{
		Clock:    clk,
		Loader:   l,
		Logger:   logger,
		Executor: exec,
		Engine:   cfg,
	}, nil
}

// Advance moves the mock clock, firing engine timers on the way
func (e *TestEnv) Advance(d time.Duration) {
	e.Clock.Advance(d)
}

// NewStubLoader returns a loader whose only playback type is the given stub
func NewStubLoader(stub *StubPlaybackType) (*loader.Loader, error) {
	l := loader.New(zap.NewNop())
	if err := l.RegisterPlayback(stub.Info()); err != nil {
		return nil, fmt.Errorf("failed to register stub playback: %w", err)
	}
	return l, nil
}
