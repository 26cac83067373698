package playback

import (
	"errors"

	"playerkit/internal/engine"
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/internal/runloop"

	"go.uber.org/zap"
)

// Media drives an engine.Engine and translates its notifications into
// playback events. Engine notifications may arrive on any goroutine; they are
// handled on the control thread through the executor.
type Media struct {
	Base

	engine      engine.Engine
	exec        runloop.Executor
	liveCapable bool
	rendered    bool
	ready       bool
	pendingPlay bool
	destroyed   bool
	position    float64
	duration    float64
}

func newMedia(name string, opts *options.Options, eng engine.Engine, exec runloop.Executor, logger *zap.Logger) *Media {
	if exec == nil {
		exec = runloop.Inline{}
	}
	m := &Media{
		Base:   NewBase(name, opts, logger),
		engine: eng,
		exec:   exec,
	}
	eng.SetObserver(m.observe)
	return m
}

func (m *Media) observe(ev engine.Event) {
	m.exec.Post(func() {
		m.handle(ev)
	})
}

func (m *Media) handle(ev engine.Event) {
	if m.destroyed {
		return
	}

	switch ev.Type {
	case engine.EventBuffering:
		m.setState(StateBuffering)
		m.Trigger(events.Buffering, nil)

	case engine.EventReady:
		m.ready = true
		m.duration = ev.Duration
		if m.state == StateBuffering {
			m.setState(StateIdle)
		}
		m.Trigger(events.BufferFull, nil)
		m.Trigger(events.Ready, events.Payload{events.KeyDuration: ev.Duration})

		if startAt := m.opts.Float(options.StartAt); startAt > 0 {
			m.Seek(startAt)
		}
		if m.pendingPlay || m.opts.Bool(options.Autoplay) {
			m.pendingPlay = false
			m.Play()
		}

	case engine.EventPlaying:
		m.position = ev.Position
		m.setState(StatePlaying)
		m.Trigger(events.Playing, events.Payload{events.KeyPosition: ev.Position})

	case engine.EventPaused:
		m.position = ev.Position
		m.setState(StatePaused)
		m.Trigger(events.Paused, events.Payload{events.KeyPosition: ev.Position})

	case engine.EventStopped:
		m.position = 0
		m.setState(StateStopped)
		m.Trigger(events.Stopped, nil)

	case engine.EventTimeUpdate:
		m.position = ev.Position
		if ev.Duration > 0 {
			m.duration = ev.Duration
		}
		m.Trigger(events.TimeUpdated, events.Payload{
			events.KeyPosition: ev.Position,
			events.KeyDuration: m.duration,
		})

	case engine.EventEnded:
		m.position = ev.Position
		m.setState(StateEnded)
		m.Trigger(events.Ended, events.Payload{events.KeyPosition: ev.Position})

	case engine.EventError:
		m.fail(ev.Err)

	default:
		m.logger.Warn("Unknown engine event", zap.String("type", string(ev.Type)))
	}
}

func (m *Media) fail(err error) {
	if err == nil {
		err = errors.New("unknown engine failure")
	}
	m.logger.Error("Playback failed", zap.Error(err))
	m.setState(StateError)
	m.Trigger(events.Error, events.Payload{events.KeyError: err})
}

// Render opens the source on the first call
func (m *Media) Render() {
	if m.rendered || m.destroyed {
		return
	}
	m.rendered = true

	source := m.opts.String(options.SourceURL)
	m.logger.Info("Opening source", zap.String("source", source))
	if err := m.engine.Open(source); err != nil {
		m.fail(err)
	}
}

// Play starts playback. Before the source is ready the request is kept and
// honoured once it is.
func (m *Media) Play() {
	if m.destroyed {
		return
	}
	if !m.ready {
		m.pendingPlay = true
		return
	}
	if err := m.engine.Play(); err != nil {
		m.fail(err)
	}
}

// Pause suspends playback
func (m *Media) Pause() {
	if m.destroyed {
		return
	}
	m.pendingPlay = false
	if !m.ready {
		return
	}
	if err := m.engine.Pause(); err != nil {
		m.fail(err)
	}
}

// Stop halts playback
func (m *Media) Stop() {
	if m.destroyed {
		return
	}
	m.pendingPlay = false
	if !m.ready {
		return
	}
	if err := m.engine.Stop(); err != nil {
		m.fail(err)
	}
}

// Seek moves to the given position. Sources that cannot seek ignore it.
func (m *Media) Seek(seconds float64) {
	if m.destroyed || !m.ready {
		return
	}
	if !m.seekable() {
		m.logger.Debug("Ignoring seek on live source", zap.Float64("position", seconds))
		return
	}
	if err := m.engine.Seek(seconds); err != nil {
		m.fail(err)
	}
}

func (m *Media) seekable() bool {
	return !m.IsLive()
}

// IsLive reports whether the source is a live stream. Only adaptive sources
// can be live: flagged by the live option or by a zero duration once ready.
func (m *Media) IsLive() bool {
	if !m.liveCapable {
		return false
	}
	return m.opts.Bool(options.Live) || (m.ready && m.duration == 0)
}

// Position returns the last known position in seconds
func (m *Media) Position() float64 {
	return m.position
}

// Duration returns the media duration in seconds, 0 until ready
func (m *Media) Duration() float64 {
	return m.duration
}

// Destroy closes the engine and drops every listener
func (m *Media) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.pendingPlay = false

	if err := m.engine.Close(); err != nil {
		m.logger.Warn("Failed to close engine", zap.Error(err))
	}
	m.teardown()
	m.logger.Debug("Playback destroyed")
}
