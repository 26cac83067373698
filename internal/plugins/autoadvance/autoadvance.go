// Package autoadvance provides the headless core plugin that moves to the
// next source when the active one ends.
package autoadvance

import (
	"errors"

	"playerkit/internal/core"
	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// Name is the registered plugin name
const Name = "auto_advance"

// OptionLoop makes the playlist wrap around to the first source
const OptionLoop = "loopPlaylist"

// AutoAdvance plays the next container whenever the active one ends
type AutoAdvance struct {
	core   plugin.CoreContext
	logger *zap.Logger
	loop   bool
	sub    events.Subscription

	// Advances counts successful moves to another container
	Advances int
}

// Register adds the plugin to the loader's core plugins
func Register(l *loader.Loader) error {
	return l.RegisterCorePlugin(plugin.PluginInfo[plugin.CoreContext]{
		Name:        Name,
		Description: "Plays the next source when the current one ends",
		Priority:    plugin.PriorityDefault,
		Factory: func(ctx plugin.CoreContext) (plugin.Plugin, error) {
			return New(ctx), nil
		},
	})
}

// New creates the plugin for a core
func New(ctx plugin.CoreContext) *AutoAdvance {
	a := &AutoAdvance{
		core:   ctx,
		logger: ctx.Logger().Named("auto_advance"),
		loop:   ctx.Options().Bool(OptionLoop),
	}
	a.sub = ctx.On(events.Ended, func(events.Payload) { a.advance() })
	return a
}

func (a *AutoAdvance) Name() string        { return Name }
func (a *AutoAdvance) View() *surface.View { return nil }
func (a *AutoAdvance) Render()             {}

// Destroy stops following the core
func (a *AutoAdvance) Destroy() {
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
}

func (a *AutoAdvance) advance() {
	err := a.core.Next()
	if errors.Is(err, core.ErrEndOfPlaylist) && a.loop && len(a.core.Containers()) > 1 {
		err = a.core.SetActiveContainer(0)
	}
	if err != nil {
		a.logger.Info("Playlist finished", zap.Error(err))
		return
	}

	active := a.core.ActiveContainer()
	if active == nil {
		return
	}
	a.Advances++
	a.logger.Debug("Advancing playlist", zap.Int("index", a.core.ActiveIndex()))
	active.Play()
}
