// Package plugin provides the plugin contract and the registries the Loader
// keeps for container-scoped and core-scoped plugin types. Plugin types are
// registered explicitly by the host before any core is built; there is no
// ambient global registry.
package plugin

import (
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/internal/playback"
	"playerkit/internal/surface"

	"go.uber.org/zap"
)

// Plugin is an independently loaded behavior unit attached to a container
// or a core. Plugins talk to their owner through events.
type Plugin interface {
	// Name returns the unique identifier for this plugin.
	// This name is used for registration and logging.
	Name() string

	// View returns the plugin surface, or nil for headless plugins.
	// The owner attaches it above the playback surface.
	View() *surface.View

	// Render is invoked by the owner whenever the owner renders
	Render()

	// Destroy releases the plugin.
	// - Stops listening to the owner's events
	// - Detaches its surface
	Destroy()
}

// ContainerContext is what a container-scoped plugin sees of its container.
// It is a non-owning reference.
type ContainerContext interface {
	events.Emitter

	Options() *options.Options
	View() *surface.View
	Logger() *zap.Logger

	// Playback returns the active playback, nil before the first load
	Playback() playback.Playback

	Play()
	Pause()
	Stop()
	Seek(seconds float64)
	IsPlaying() bool

	// SetMediaControlEnabled fires enableMediaControl or disableMediaControl
	SetMediaControlEnabled(enabled bool)
	MediaControlEnabled() bool
}

// CoreContext is what a core-scoped plugin sees of its core. It is a
// non-owning reference.
type CoreContext interface {
	events.Emitter

	Options() *options.Options
	View() *surface.View
	Logger() *zap.Logger

	// Containers returns the containers in playlist order
	Containers() []ContainerContext

	// ActiveContainer returns the active container, nil when there is none
	ActiveContainer() ContainerContext
	ActiveIndex() int
	SetActiveContainer(index int) error
	Next() error
	Previous() error
}

// Factory creates a plugin from its owner's context
type Factory[C any] func(ctx C) (Plugin, error)

// ContainerFactory creates container-scoped plugins
type ContainerFactory = Factory[ContainerContext]

// CoreFactory creates core-scoped plugins
type CoreFactory = Factory[CoreContext]
