// Package playback implements the strategies that play one media source and
// the registry/factory that picks a strategy for a given source.
package playback

import (
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/internal/surface"

	"go.uber.org/zap"
)

// State is the coarse playback state
type State string

const (
	StateIdle      State = "idle"
	StateBuffering State = "buffering"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
	StateEnded     State = "ended"
	StateError     State = "error"
)

// Playback plays one media source. All methods must be called on the
// control thread. Failures are reported through the Error event.
type Playback interface {
	events.Emitter

	// Name identifies the strategy (progressive, adaptive, noop)
	Name() string

	// View is the surface the playback renders into
	View() *surface.View

	// Options returns the options the playback was built with
	Options() *options.Options

	// Render prepares the playback. Calling it again has no effect.
	Render()

	Play()
	Pause()
	Stop()
	Seek(seconds float64)

	Position() float64
	Duration() float64
	State() State
	IsPlaying() bool

	// Destroy releases the playback and removes its listeners
	Destroy()
}

// Base holds what every playback shares: its bus, surface and options
type Base struct {
	*events.Bus

	name   string
	view   *surface.View
	opts   *options.Options
	logger *zap.Logger
	state  State
}

// NewBase creates the shared part of a playback
func NewBase(name string, opts *options.Options, logger *zap.Logger) Base {
	if opts == nil {
		opts = options.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named(name)
	return Base{
		Bus:    events.NewBus(logger),
		name:   name,
		view:   surface.NewView(name),
		opts:   opts,
		logger: logger,
		state:  StateIdle,
	}
}

// Name returns the strategy name
func (b *Base) Name() string {
	return b.name
}

// View returns the playback surface
func (b *Base) View() *surface.View {
	return b.view
}

// Options returns the playback options
func (b *Base) Options() *options.Options {
	return b.opts
}

// State returns the current state
func (b *Base) State() State {
	return b.state
}

// IsPlaying reports whether the playback is playing
func (b *Base) IsPlaying() bool {
	return b.state == StatePlaying
}

func (b *Base) setState(state State) {
	if b.state == state {
		return
	}
	b.logger.Debug("State changed",
		zap.String("from", string(b.state)),
		zap.String("to", string(state)))
	b.state = state
}

// teardown detaches the surface and drops every listener
func (b *Base) teardown() {
	b.view.RemoveFromParent()
	b.StopListening()
	b.Off("")
}
