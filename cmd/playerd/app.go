package main

import (
	"context"
	"fmt"

	"playerkit/internal/api"
	"playerkit/internal/clock"
	"playerkit/internal/config"
	"playerkit/internal/core"
	"playerkit/internal/engine"
	"playerkit/internal/loader"
	"playerkit/internal/playback"
	"playerkit/internal/plugins/autoadvance"
	"playerkit/internal/plugins/eventstream"
	"playerkit/internal/plugins/mediacontrol"
	"playerkit/internal/plugins/poster"
	"playerkit/internal/runloop"

	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Settings are the command-line inputs to the app
type Settings struct {
	ConfigPath  string
	Sources     []string
	Port        int
	LogLevel    string
	Development bool

	// Fs and Getenv default to the real filesystem and environment
	Fs     afero.Fs
	Getenv func(string) string
}

// AppOptions wires the daemon
func AppOptions(settings Settings) fx.Option {
	return fx.Options(
		fx.Supply(settings),

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		fx.Provide(
			newConfig,
			newLogger,
			newLoop,
			eventstream.NewState,
			api.NewHub,
			newLoader,
			newPlayer,
			newServer,
		),

		fx.Invoke(registerHooks),
	)
}

// newConfig loads the config file, then applies the environment and flags
func newConfig(settings Settings) (*config.PlayerConfig, error) {
	getenv := settings.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	cfg, err := config.NewLoader(settings.Fs, nil).Load(settings.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if len(settings.Sources) > 0 {
		cfg.Sources = settings.Sources
	}
	if settings.Port != 0 {
		cfg.API.Port = settings.Port
	}
	if settings.LogLevel != "" {
		cfg.LogLevel = settings.LogLevel
	}
	if settings.Development {
		cfg.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates the zap logger configured by cfg
func newLogger(cfg *config.PlayerConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func newLoop(logger *zap.Logger) *runloop.Loop {
	return runloop.NewLoop(logger, 256)
}

// newLoader registers the built-in playbacks and plugins
func newLoader(cfg *config.PlayerConfig, loop *runloop.Loop, state *eventstream.State, hub *api.Hub, logger *zap.Logger) (*loader.Loader, error) {
	clk := clock.NewRealClock()
	l := loader.New(logger)

	provider := engine.SimulatedProvider(clk, cfg.SimulatedConfig(), logger)
	if err := playback.RegisterDefaults(l.Playbacks, provider, loop, logger); err != nil {
		return nil, fmt.Errorf("failed to register playbacks: %w", err)
	}

	registrations := []func(*loader.Loader) error{
		mediacontrol.Register,
		poster.Register,
		autoadvance.Register,
		func(l *loader.Loader) error { return eventstream.Register(l, state, hub, clk) },
	}
	for _, register := range registrations {
		if err := register(l); err != nil {
			return nil, fmt.Errorf("failed to register plugin: %w", err)
		}
	}
	return l, nil
}

// Player owns the running core. Its fields are only touched on the loop.
type Player struct {
	factory *core.Factory
	core    *core.Core
}

func newPlayer(cfg *config.PlayerConfig, l *loader.Loader, logger *zap.Logger) (*Player, error) {
	opts, err := cfg.PlayerOptions()
	if err != nil {
		return nil, err
	}
	return &Player{factory: core.NewFactory(cfg.Sources, l, opts, logger)}, nil
}

// Current returns the running core, nil before start and after stop
func (p *Player) Current() *core.Core {
	return p.core
}

func (p *Player) start() {
	p.core = p.factory.Create()
	p.core.Render()
}

func (p *Player) stop() {
	if p.core == nil {
		return
	}
	p.core.Destroy()
	p.core = nil
}

func newServer(cfg *config.PlayerConfig, state *eventstream.State, hub *api.Hub, loop *runloop.Loop, player *Player, logger *zap.Logger) *api.Server {
	controller := api.NewCoreController(loop, player.Current)
	return api.NewServer(state, controller, hub, logger, cfg.API.Port)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, loop *runloop.Loop, player *Player, server *api.Server, cfg *config.PlayerConfig, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go loop.Run(context.Background())

			if err := loop.Call(ctx, player.start); err != nil {
				return fmt.Errorf("failed to create core: %w", err)
			}
			if err := server.Start(); err != nil {
				return err
			}

			logger.Info("Player started",
				zap.Int("sources", len(cfg.Sources)),
				zap.String("api_addr", server.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")

			err := server.Stop(ctx)
			if callErr := loop.Call(ctx, player.stop); callErr != nil {
				logger.Warn("Core was not destroyed cleanly", zap.Error(callErr))
			}
			loop.Stop()
			logger.Sync()
			return err
		},
	})
}
