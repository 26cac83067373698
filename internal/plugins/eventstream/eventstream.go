// Package eventstream provides the headless core plugin that mirrors the
// public events of a core to an outside sink and keeps a snapshot of the
// playlist for status queries.
package eventstream

import (
	"time"

	"playerkit/internal/clock"
	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/options"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// Name is the registered plugin name
const Name = "event_stream"

// Message is one event as published to a sink
type Message struct {
	Event   string         `json:"event"`
	CoreID  string         `json:"coreId"`
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Time    time.Time      `json:"time"`
}

// Sink receives published messages. Publish must not block.
type Sink interface {
	Publish(msg Message)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(msg Message)

// Publish calls f
func (f SinkFunc) Publish(msg Message) { f(msg) }

// Stream follows a core and refreshes its snapshot on every public event
type Stream struct {
	core   plugin.CoreContext
	state  *State
	sink   Sink
	clock  clock.Clock
	logger *zap.Logger
	subs   []events.Subscription
}

// Register adds the plugin to the loader's core plugins. sink may be nil.
func Register(l *loader.Loader, state *State, sink Sink, clk clock.Clock) error {
	return l.RegisterCorePlugin(plugin.PluginInfo[plugin.CoreContext]{
		Name:        Name,
		Description: "Publishes core events and keeps a status snapshot",
		Priority:    plugin.PriorityDefault,
		Order:       10,
		Factory: func(ctx plugin.CoreContext) (plugin.Plugin, error) {
			return New(ctx, state, sink, clk), nil
		},
	})
}

// New creates the plugin and records an initial snapshot
func New(ctx plugin.CoreContext, state *State, sink Sink, clk clock.Clock) *Stream {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	s := &Stream{
		core:   ctx,
		state:  state,
		sink:   sink,
		clock:  clk,
		logger: ctx.Logger().Named("event_stream"),
	}

	for _, name := range events.PublicEvents() {
		name := name
		s.subs = append(s.subs, ctx.On(name, func(payload events.Payload) {
			s.handle(name, payload)
		}))
	}
	s.subs = append(s.subs, ctx.On(events.CoreDestroyed, func(events.Payload) {
		s.handle(events.CoreDestroyed, nil)
	}))

	s.refresh("")
	return s
}

func (s *Stream) Name() string        { return Name }
func (s *Stream) View() *surface.View { return nil }
func (s *Stream) Render()             {}

// Destroy stops following the core
func (s *Stream) Destroy() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *Stream) handle(name string, payload events.Payload) {
	if name == events.CoreDestroyed {
		s.state.set(Snapshot{
			CoreID:      s.core.ID(),
			ActiveIndex: -1,
			Containers:  []ContainerState{},
			LastEvent:   name,
			UpdatedAt:   s.clock.Now(),
		})
	} else {
		s.refresh(name)
	}

	if s.sink == nil {
		return
	}
	s.sink.Publish(Message{
		Event:   name,
		CoreID:  s.core.ID(),
		Source:  s.activeSource(),
		Payload: sanitize(payload),
		Time:    s.clock.Now(),
	})
}

func (s *Stream) refresh(lastEvent string) {
	containers := s.core.Containers()
	snap := Snapshot{
		CoreID:      s.core.ID(),
		ActiveIndex: s.core.ActiveIndex(),
		Containers:  make([]ContainerState, 0, len(containers)),
		LastEvent:   lastEvent,
		UpdatedAt:   s.clock.Now(),
	}
	for i, ct := range containers {
		cs := ContainerState{
			Index:   i,
			Source:  ct.Options().String(options.SourceURL),
			Playing: ct.IsPlaying(),
		}
		if p := ct.Playback(); p != nil {
			cs.Playback = p.Name()
			cs.State = string(p.State())
			cs.Position = p.Position()
			cs.Duration = p.Duration()
		}
		snap.Containers = append(snap.Containers, cs)
	}
	s.state.set(snap)
}

func (s *Stream) activeSource() string {
	active := s.core.ActiveContainer()
	if active == nil {
		return ""
	}
	return active.Options().String(options.SourceURL)
}

// sanitize copies payload so it can leave the control thread, turning errors
// into their messages.
func sanitize(payload events.Payload) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if err, ok := v.(error); ok {
			out[k] = err.Error()
			continue
		}
		out[k] = v
	}
	return out
}
