package testutil

import (
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/internal/playback"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"github.com/samber/lo"
)

// StubPlayback is a playback driven entirely by the test
type StubPlayback struct {
	*events.Bus

	name     string
	view     *surface.View
	opts     *options.Options
	state    playback.State
	position float64
	duration float64

	// Renders counts Render calls
	Renders int

	// Destroyed is set by Destroy
	Destroyed bool

	// Calls records Play, Pause, Stop and Seek in order
	Calls []string
}

// NewStubPlayback creates a stub playback
func NewStubPlayback(name string, opts *options.Options) *StubPlayback {
	return &StubPlayback{
		Bus:   events.NewBus(nil),
		name:  name,
		view:  surface.NewView(name),
		opts:  opts,
		state: playback.StateIdle,
	}
}

func (s *StubPlayback) Name() string              { return s.name }
func (s *StubPlayback) View() *surface.View       { return s.view }
func (s *StubPlayback) Options() *options.Options { return s.opts }
func (s *StubPlayback) Render()                   { s.Renders++ }
func (s *StubPlayback) Position() float64         { return s.position }
func (s *StubPlayback) Duration() float64         { return s.duration }
func (s *StubPlayback) State() playback.State     { return s.state }
func (s *StubPlayback) IsPlaying() bool           { return s.state == playback.StatePlaying }

// Play marks the stub as playing and fires playing
func (s *StubPlayback) Play() {
	s.Calls = append(s.Calls, "play")
	s.state = playback.StatePlaying
	s.Trigger(events.Playing, events.Payload{events.KeyPosition: s.position})
}

// Pause marks the stub as paused and fires paused
func (s *StubPlayback) Pause() {
	s.Calls = append(s.Calls, "pause")
	s.state = playback.StatePaused
	s.Trigger(events.Paused, events.Payload{events.KeyPosition: s.position})
}

// Stop rewinds the stub and fires stopped
func (s *StubPlayback) Stop() {
	s.Calls = append(s.Calls, "stop")
	s.state = playback.StateStopped
	s.position = 0
	s.Trigger(events.Stopped, nil)
}

// Seek moves the stub and fires timeUpdated
func (s *StubPlayback) Seek(seconds float64) {
	s.Calls = append(s.Calls, "seek")
	s.position = seconds
	s.Trigger(events.TimeUpdated, events.Payload{
		events.KeyPosition: seconds,
		events.KeyDuration: s.duration,
	})
}

// SetDuration sets the duration and fires ready
func (s *StubPlayback) SetDuration(seconds float64) {
	s.duration = seconds
	s.Trigger(events.Ready, events.Payload{events.KeyDuration: seconds})
}

// End fires ended
func (s *StubPlayback) End() {
	s.state = playback.StateEnded
	s.position = s.duration
	s.Trigger(events.Ended, events.Payload{events.KeyPosition: s.position})
}

// Destroy detaches the stub and drops its listeners
func (s *StubPlayback) Destroy() {
	s.Destroyed = true
	s.view.RemoveFromParent()
	s.StopListening()
	s.Off("")
}

// StubPlaybackType registers stub playbacks for a set of extensions and keeps
// every instance it builds.
type StubPlaybackType struct {
	Name       string
	Extensions []string
	Created    []*StubPlayback
}

// Info returns the registration for this stub type
func (s *StubPlaybackType) Info() playback.Info {
	return playback.Info{
		Name: s.Name,
		CanPlay: func(source, _ string) bool {
			return lo.Contains(s.Extensions, playback.Extension(source))
		},
		Factory: func(opts *options.Options) (playback.Playback, error) {
			p := NewStubPlayback(s.Name, opts)
			s.Created = append(s.Created, p)
			return p, nil
		},
	}
}

// Last returns the most recently built stub, or nil
func (s *StubPlaybackType) Last() *StubPlayback {
	if len(s.Created) == 0 {
		return nil
	}
	return s.Created[len(s.Created)-1]
}

// StubPlugin is a plugin that counts renders and remembers its context
type StubPlugin struct {
	name string
	view *surface.View

	// Context is the owner the plugin was built with
	Context any

	// Renders counts Render calls
	Renders int

	// Destroyed is set by Destroy
	Destroyed bool
}

// NewStubPlugin creates a stub plugin with its own surface
func NewStubPlugin(name string, ctx any) *StubPlugin {
	return &StubPlugin{
		name:    name,
		view:    surface.NewView(name),
		Context: ctx,
	}
}

func (s *StubPlugin) Name() string        { return s.name }
func (s *StubPlugin) View() *surface.View { return s.view }
func (s *StubPlugin) Render()             { s.Renders++ }

// Destroy detaches the stub surface
func (s *StubPlugin) Destroy() {
	s.Destroyed = true
	s.view.RemoveFromParent()
}

// StubContainerPlugin returns a container plugin registration appending
// every instance to sink
func StubContainerPlugin(name string, sink *[]*StubPlugin) plugin.PluginInfo[plugin.ContainerContext] {
	return plugin.PluginInfo[plugin.ContainerContext]{
		Name: name,
		Factory: func(ctx plugin.ContainerContext) (plugin.Plugin, error) {
			p := NewStubPlugin(name, ctx)
			if sink != nil {
				*sink = append(*sink, p)
			}
			return p, nil
		},
	}
}

// StubCorePlugin returns a core plugin registration appending every
// instance to sink
func StubCorePlugin(name string, sink *[]*StubPlugin) plugin.PluginInfo[plugin.CoreContext] {
	return plugin.PluginInfo[plugin.CoreContext]{
		Name: name,
		Factory: func(ctx plugin.CoreContext) (plugin.Plugin, error) {
			p := NewStubPlugin(name, ctx)
			if sink != nil {
				*sink = append(*sink, p)
			}
			return p, nil
		},
	}
}

// RecorderContainerPlugin returns a container plugin registration that
// starts recording the container's events as soon as it is built, before
// the container auto-loads its source.
func RecorderContainerPlugin(sink *[]*Recorder) plugin.PluginInfo[plugin.ContainerContext] {
	return plugin.PluginInfo[plugin.ContainerContext]{
		Name:  "recorder",
		Order: 1,
		Factory: func(ctx plugin.ContainerContext) (plugin.Plugin, error) {
			*sink = append(*sink, NewRecorder(ctx))
			return NewStubPlugin("recorder", ctx), nil
		},
	}
}
