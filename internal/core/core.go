// Package core implements the top-level player: it owns one container per
// source, tracks which one is active and hosts core-scoped plugins.
package core

import (
	"errors"
	"fmt"

	"playerkit/internal/container"
	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/options"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	// ErrNoContainer is returned when an index does not name a container
	ErrNoContainer = errors.New("no such container")

	// ErrEndOfPlaylist is returned by Next and Previous at either end
	ErrEndOfPlaylist = errors.New("end of playlist")
)

// renamed maps container events to the name the core re-triggers them under
var renamed = map[string]string{
	events.WillChangePlayback: events.WillChangeActivePlayback,
	events.DidChangePlayback:  events.DidChangeActivePlayback,
}

// forwarded lists the container events the core re-triggers from its
// active container
var forwarded = append([]string{
	events.WillLoadSource,
	events.DidLoadSource,
	events.DidNotLoadSource,
	events.WillChangePlayback,
	events.DidChangePlayback,
	events.EnableMediaControl,
	events.DisableMediaControl,
	events.MediaControlPlaying,
	events.MediaControlPaused,
}, events.PlaybackEvents...)

// Core owns containers and core plugins. All methods must be called on the
// control thread; none may be called after Destroy.
type Core struct {
	*events.Bus

	logger     *zap.Logger
	loader     *loader.Loader
	opts       *options.Options
	view       *surface.View
	containers []*container.Container
	active     int
	activeSubs []events.Subscription
	plugins    []plugin.Plugin
	rendered   bool
}

// New builds a core with one container per source and activates the first.
// opts is snapshotted; each container gets its own copy plus its source.
func New(sources []string, l *loader.Loader, opts *options.Options, logger *zap.Logger) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = options.New()
	}

	bus := events.NewBus(logger)
	c := &Core{
		Bus:    bus,
		logger: logger.Named("core").With(zap.String("core_id", bus.ID())),
		loader: l,
		opts:   opts.Copy(),
		view:   surface.NewView("core"),
		active: -1,
	}

	for _, source := range sources {
		c.addContainer(source)
	}
	if len(c.containers) > 0 {
		if err := c.SetActiveContainer(0); err != nil {
			c.logger.Error("Failed to activate first container", zap.Error(err))
		}
	}
	return c
}

func (c *Core) addContainer(source string) *container.Container {
	opts := c.opts.Copy()
	if source != "" {
		opts.Set(options.SourceURL, source)
	} else {
		opts.Delete(options.SourceURL)
	}

	ct := container.New(c.loader, opts, c.logger)
	ct.View().SetHidden(true)
	c.view.AddChildMatchingBounds(ct.View())
	if c.rendered {
		ct.Render()
	}
	c.raisePlugins()
	c.containers = append(c.containers, ct)

	c.logger.Debug("Container added",
		zap.String("container_id", ct.ID()),
		zap.String("source", source))
	return ct
}

// AddSource appends a container for source. The first container added to
// an empty core becomes active.
func (c *Core) AddSource(source string) *container.Container {
	return c.appendSource(source)
}

func (c *Core) appendSource(source string) *container.Container {
	ct := c.addContainer(source)
	if c.active < 0 {
		if err := c.SetActiveContainer(len(c.containers) - 1); err != nil {
			c.logger.Error("Failed to activate container", zap.Error(err))
		}
	}
	return ct
}

// Load loads source into the active container. An empty core first gets an
// empty container, activated before the load so every load event is
// forwarded.
func (c *Core) Load(source, mimeType string) {
	active := c.ActiveContainer()
	if active == nil {
		active = c.appendSource("")
	}
	active.Load(source, mimeType)
}

// SetActiveContainer makes the container at index the active one. The old
// container is paused, hidden and no longer forwarded strictly between
// willChangeActiveContainer and didChangeActiveContainer.
func (c *Core) SetActiveContainer(index int) error {
	if index < 0 || index >= len(c.containers) {
		return fmt.Errorf("container %d of %d: %w", index, len(c.containers), ErrNoContainer)
	}
	if index == c.active {
		return nil
	}

	from := c.active
	payload := events.Payload{events.KeyFrom: from, events.KeyTo: index}
	c.Trigger(events.WillChangeActiveContainer, payload)

	if old := c.ActiveContainer(); old != nil {
		c.stopForwarding()
		if old.IsPlaying() {
			old.Pause()
		}
		old.View().SetHidden(true)
	}

	c.active = index
	next := c.containers[index]
	next.View().SetHidden(false)
	c.view.BringToFront(next.View())
	c.raisePlugins()
	c.forward(next)

	c.logger.Info("Active container changed",
		zap.Int("from", from),
		zap.Int("to", index),
		zap.String("source", next.Source()))
	c.Trigger(events.DidChangeActiveContainer, payload)
	return nil
}

func (c *Core) forward(ct *container.Container) {
	for _, name := range forwarded {
		name := name
		target := name
		if r, ok := renamed[name]; ok {
			target = r
		}
		c.activeSubs = append(c.activeSubs, c.ListenTo(ct, name, func(payload events.Payload) {
			c.Trigger(target, payload)
		}))
	}
}

func (c *Core) stopForwarding() {
	for _, sub := range c.activeSubs {
		sub.Unsubscribe()
	}
	c.activeSubs = nil
}

// raisePlugins keeps core plugin surfaces above every container
func (c *Core) raisePlugins() {
	for _, p := range c.plugins {
		if v := p.View(); v != nil && v.Parent() == c.view {
			c.view.BringToFront(v)
		}
	}
}

// Next activates the following container
func (c *Core) Next() error {
	if c.active+1 >= len(c.containers) {
		return ErrEndOfPlaylist
	}
	return c.SetActiveContainer(c.active + 1)
}

// Previous activates the preceding container
func (c *Core) Previous() error {
	if c.active <= 0 {
		return ErrEndOfPlaylist
	}
	return c.SetActiveContainer(c.active - 1)
}

// AddPlugin appends a core plugin
func (c *Core) AddPlugin(p plugin.Plugin) {
	c.plugins = append(c.plugins, p)
}

// Render renders every container, then the core plugins above them.
// Containers added afterwards are rendered as they are added.
func (c *Core) Render() {
	c.rendered = true
	for _, ct := range c.containers {
		c.view.AddChildMatchingBounds(ct.View())
		ct.Render()
	}
	if active := c.ActiveContainer(); active != nil {
		c.view.BringToFront(active.View())
	}
	for _, p := range c.plugins {
		if v := p.View(); v != nil {
			c.view.AddChild(v)
			c.view.BringToFront(v)
		}
		p.Render()
	}
}

// Destroy tears down containers and plugins. The core must not be used
// afterwards.
func (c *Core) Destroy() {
	c.Trigger(events.CoreDestroyed, nil)

	c.stopForwarding()
	for _, ct := range c.containers {
		ct.Destroy()
	}
	for _, p := range c.plugins {
		p.Destroy()
	}
	c.view.RemoveFromParent()

	c.StopListening()
	c.Off("")
	c.containers = nil
	c.active = -1
	c.logger.Debug("Core destroyed")
}

// Containers returns the containers in playlist order
func (c *Core) Containers() []*container.Container {
	return append([]*container.Container(nil), c.containers...)
}

// ActiveContainer returns the active container, nil when there is none
func (c *Core) ActiveContainer() *container.Container {
	if c.active < 0 || c.active >= len(c.containers) {
		return nil
	}
	return c.containers[c.active]
}

// ActiveIndex returns the index of the active container, -1 when none
func (c *Core) ActiveIndex() int {
	return c.active
}

// Plugins returns the core plugins in registration order
func (c *Core) Plugins() []plugin.Plugin {
	return append([]plugin.Plugin(nil), c.plugins...)
}

// HasPlugin reports whether a core plugin with the given name is attached
func (c *Core) HasPlugin(name string) bool {
	_, ok := plugin.FindByName(c.plugins, name)
	return ok
}

// Options returns the core options snapshot
func (c *Core) Options() *options.Options {
	return c.opts
}

// View returns the core surface
func (c *Core) View() *surface.View {
	return c.view
}

// Logger returns the core logger
func (c *Core) Logger() *zap.Logger {
	return c.logger
}

// Context returns the view of this core handed to core plugins
func (c *Core) Context() plugin.CoreContext {
	return pluginContext{c}
}

// pluginContext adapts Core to plugin.CoreContext, exposing containers
// through their plugin-facing interface
type pluginContext struct {
	*Core
}

func (p pluginContext) Containers() []plugin.ContainerContext {
	return lo.Map(p.Core.containers, func(ct *container.Container, _ int) plugin.ContainerContext {
		return ct
	})
}

func (p pluginContext) ActiveContainer() plugin.ContainerContext {
	if active := p.Core.ActiveContainer(); active != nil {
		return active
	}
	return nil
}
