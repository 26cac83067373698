// Package loader holds the registries of plugin and playback types a host
// populates before building any core.
package loader

import (
	"playerkit/internal/playback"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// Loader is the explicit configuration object handed to CoreFactory. It is
// populated once at startup and sealed when the first core is built.
type Loader struct {
	ContainerPlugins *plugin.ContainerRegistry
	CorePlugins      *plugin.CoreRegistry
	Playbacks        *playback.Registry

	logger *zap.Logger
}

// New creates an empty loader
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("loader")
	return &Loader{
		ContainerPlugins: plugin.NewRegistry[plugin.ContainerContext](logger),
		CorePlugins:      plugin.NewRegistry[plugin.CoreContext](logger),
		Playbacks:        playback.NewRegistry(),
		logger:           logger,
	}
}

// RegisterContainerPlugin adds a container-scoped plugin type
func (l *Loader) RegisterContainerPlugin(info plugin.PluginInfo[plugin.ContainerContext]) error {
	return l.ContainerPlugins.Register(info)
}

// RegisterCorePlugin adds a core-scoped plugin type
func (l *Loader) RegisterCorePlugin(info plugin.PluginInfo[plugin.CoreContext]) error {
	return l.CorePlugins.Register(info)
}

// RegisterPlayback adds a playback strategy
func (l *Loader) RegisterPlayback(info playback.Info) error {
	return l.Playbacks.Register(info)
}

// Seal freezes every registry. Sealing twice is harmless.
func (l *Loader) Seal() {
	if l.Sealed() {
		return
	}
	l.ContainerPlugins.Seal()
	l.CorePlugins.Seal()
	l.Playbacks.Seal()

	l.logger.Info("Loader sealed",
		zap.Strings("container_plugins", l.ContainerPlugins.Names()),
		zap.Strings("core_plugins", l.CorePlugins.Names()),
		zap.Strings("playbacks", l.Playbacks.Names()))
}

// Sealed reports whether the loader accepts no more registrations
func (l *Loader) Sealed() bool {
	return l.ContainerPlugins.Sealed() && l.CorePlugins.Sealed() && l.Playbacks.Sealed()
}
