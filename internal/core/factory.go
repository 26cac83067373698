package core

import (
	"playerkit/internal/loader"
	"playerkit/internal/options"

	"go.uber.org/zap"
)

// Factory builds cores from a source list and a loader
type Factory struct {
	sources []string
	loader  *loader.Loader
	opts    *options.Options
	logger  *zap.Logger
}

// NewFactory creates a core factory
func NewFactory(sources []string, l *loader.Loader, opts *options.Options, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		sources: append([]string(nil), sources...),
		loader:  l,
		opts:    opts,
		logger:  logger,
	}
}

// Create seals the loader, builds the core and attaches every registered
// core plugin. A plugin that fails to build is logged and skipped.
func (f *Factory) Create() *Core {
	f.loader.Seal()

	c := New(f.sources, f.loader, f.opts, f.logger)

	plugins, err := f.loader.CorePlugins.CreateAll(c.Context())
	if err != nil {
		c.logger.Warn("Some core plugins were skipped", zap.Error(err))
	}
	for _, p := range plugins {
		c.AddPlugin(p)
	}

	c.logger.Info("Core created",
		zap.Int("containers", len(c.containers)),
		zap.Int("plugins", len(c.plugins)))
	return c
}
