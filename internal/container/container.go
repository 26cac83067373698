// Package container implements the owner of one active playback and its
// container-scoped plugins.
package container

import (
	"fmt"

	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/options"
	"playerkit/internal/playback"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// State is the container lifecycle state
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateLoaded        State = "loaded"
	StateDestroyed     State = "destroyed"
)

// Container owns exactly one active playback plus its plugins. All methods
// must be called on the control thread; none may be called after Destroy.
type Container struct {
	*events.Bus

	logger   *zap.Logger
	factory  *playback.Factory
	opts     *options.Options
	view     *surface.View
	playback playback.Playback
	subs     []events.Subscription
	plugins  []plugin.Plugin
	state    State

	mediaControlEnabled bool
}

// New creates a container with a working copy of opts, instantiates the
// loader's container plugins and loads sourceUrl when it is set.
func New(l *loader.Loader, opts *options.Options, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = options.New()
	}

	bus := events.NewBus(logger)
	c := &Container{
		Bus:     bus,
		logger:  logger.Named("container").With(zap.String("container_id", bus.ID())),
		factory: playback.NewFactory(l.Playbacks, logger),
		opts:    opts.Copy(),
		view:    surface.NewView("container"),
		state:   StateUninitialized,
	}

	c.loadPlugins(l)

	if source := c.opts.String(options.SourceURL); source != "" {
		c.Load(source, c.opts.String(options.MimeType))
	}
	return c
}

func (c *Container) loadPlugins(l *loader.Loader) {
	plugins, err := l.ContainerPlugins.CreateAll(c)
	if err != nil {
		c.logger.Warn("Some container plugins were skipped", zap.Error(err))
	}
	for _, p := range plugins {
		c.AddPlugin(p)
	}
}

// AddPlugin appends a plugin
func (c *Container) AddPlugin(p plugin.Plugin) {
	c.plugins = append(c.plugins, p)
}

// Load switches to a new source. It is the only way to change sources and
// may be called again at any time.
func (c *Container) Load(source, mimeType string) {
	c.state = StateLoading
	c.Trigger(events.WillLoadSource, events.Payload{
		events.KeySource:   source,
		events.KeyMimeType: mimeType,
	})

	c.opts.Set(options.SourceURL, source)
	if mimeType != "" {
		c.opts.Set(options.MimeType, mimeType)
	} else {
		c.opts.Delete(options.MimeType)
	}

	c.setPlayback(c.factory.Create(c.opts.Copy()))
	c.renderPlayback()
	c.state = StateLoaded

	payload := events.Payload{
		events.KeySource:   source,
		events.KeyPlayback: c.playback.Name(),
	}
	if playback.IsNoOp(c.playback) {
		c.logger.Info("Source not loaded", zap.String("source", source))
		c.Trigger(events.DidNotLoadSource, payload)
		c.SetMediaControlEnabled(false)
		return
	}

	c.logger.Info("Source loaded",
		zap.String("source", source),
		zap.String("playback", c.playback.Name()))
	c.Trigger(events.DidLoadSource, payload)
	c.SetMediaControlEnabled(true)
}

// setPlayback makes p the owned playback, tearing down the previous one
func (c *Container) setPlayback(p playback.Playback) {
	if p == c.playback {
		return
	}

	c.Trigger(events.WillChangePlayback, events.Payload{events.KeyPlayback: p.Name()})

	if old := c.playback; old != nil {
		c.dropPlaybackSubscriptions()
		old.View().RemoveFromParent()
		old.Destroy()
	}

	c.playback = p
	c.subs = append(c.subs, c.ListenToOnce(p, events.Playing, func(events.Payload) {
		c.opts.Set(options.StartAt, 0.0)
	}))
	for _, name := range events.PlaybackEvents {
		name := name
		c.subs = append(c.subs, c.ListenTo(p, name, func(payload events.Payload) {
			c.Trigger(name, payload)
		}))
	}

	c.Trigger(events.DidChangePlayback, events.Payload{events.KeyPlayback: p.Name()})
}

func (c *Container) dropPlaybackSubscriptions() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
}

// Render attaches and renders the playback below every plugin surface, then
// renders the plugins. Calling it again keeps the same tree.
func (c *Container) Render() {
	c.renderPlayback()
	for _, p := range c.plugins {
		if v := p.View(); v != nil {
			c.view.AddChild(v)
		}
		p.Render()
	}
}

func (c *Container) renderPlayback() {
	if c.playback == nil {
		return
	}
	c.view.AddChildMatchingBounds(c.playback.View())
	c.playback.Render()
	c.view.SendToBack(c.playback.View())
}

// Destroy tears the container down. The container must not be used afterwards.
func (c *Container) Destroy() {
	c.Trigger(events.ContainerDestroyed, nil)

	c.StopListening()
	c.dropPlaybackSubscriptions()
	if c.playback != nil {
		c.playback.Destroy()
	}
	for _, p := range c.plugins {
		p.Destroy()
	}
	c.view.RemoveFromParent()

	c.state = StateDestroyed
	c.Off("")
	c.logger.Debug("Container destroyed")
}

// SetMediaControlEnabled fires enableMediaControl or disableMediaControl
func (c *Container) SetMediaControlEnabled(enabled bool) {
	c.mediaControlEnabled = enabled
	if enabled {
		c.Trigger(events.EnableMediaControl, nil)
	} else {
		c.Trigger(events.DisableMediaControl, nil)
	}
}

// MediaControlEnabled reports whether media control is enabled
func (c *Container) MediaControlEnabled() bool {
	return c.mediaControlEnabled
}

// Play starts the playback, if any
func (c *Container) Play() {
	if c.playback != nil {
		c.playback.Play()
	}
}

// Pause pauses the playback, if any
func (c *Container) Pause() {
	if c.playback != nil {
		c.playback.Pause()
	}
}

// Stop stops the playback, if any
func (c *Container) Stop() {
	if c.playback != nil {
		c.playback.Stop()
	}
}

// Seek moves the playback position
func (c *Container) Seek(seconds float64) {
	if c.playback != nil {
		c.playback.Seek(seconds)
	}
}

// IsPlaying reports whether the playback is playing
func (c *Container) IsPlaying() bool {
	return c.playback != nil && c.playback.IsPlaying()
}

// Position returns the playback position in seconds
func (c *Container) Position() float64 {
	if c.playback == nil {
		return 0
	}
	return c.playback.Position()
}

// Duration returns the playback duration in seconds
func (c *Container) Duration() float64 {
	if c.playback == nil {
		return 0
	}
	return c.playback.Duration()
}

// Playback returns the owned playback, nil before the first load
func (c *Container) Playback() playback.Playback {
	if c.playback == nil {
		return nil
	}
	return c.playback
}

// Plugins returns the container plugins in registration order
func (c *Container) Plugins() []plugin.Plugin {
	return append([]plugin.Plugin(nil), c.plugins...)
}

// HasPlugin reports whether a plugin with the given name is attached
func (c *Container) HasPlugin(name string) bool {
	_, ok := plugin.FindByName(c.plugins, name)
	return ok
}

// Options returns the working options
func (c *Container) Options() *options.Options {
	return c.opts
}

// View returns the container surface
func (c *Container) View() *surface.View {
	return c.view
}

// Logger returns the container logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// State returns the lifecycle state
func (c *Container) State() State {
	return c.state
}

// Source returns the current source locator
func (c *Container) Source() string {
	return c.opts.String(options.SourceURL)
}

func (c *Container) String() string {
	return fmt.Sprintf("container(%s, %s)", c.ID(), c.Source())
}

var _ plugin.ContainerContext = (*Container)(nil)
