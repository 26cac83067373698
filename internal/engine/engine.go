// Package engine defines the contract of the platform media stack a playback
// drives, and ships a simulated implementation used by the daemon and tests.
package engine

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// EventType identifies a notification emitted by an engine
type EventType string

const (
	EventBuffering  EventType = "buffering"
	EventReady      EventType = "ready"
	EventPlaying    EventType = "playing"
	EventPaused     EventType = "paused"
	EventStopped    EventType = "stopped"
	EventTimeUpdate EventType = "time_update"
	EventEnded      EventType = "ended"
	EventError      EventType = "error"
)

// Event is a notification from the engine. Position and Duration are in seconds.
type Event struct {
	Type     EventType
	Position float64
	Duration float64
	Err      error
}

// Observer receives engine events. It may be called from any goroutine.
type Observer func(Event)

// Engine is an opaque decoder/renderer for one media source
type Engine interface {
	// Open prepares the source. Readiness is reported through EventReady.
	Open(source string) error

	Play() error
	Pause() error
	Stop() error
	Seek(seconds float64) error

	// Position returns the current playback position in seconds
	Position() float64

	// Duration returns the media duration in seconds, 0 while unknown or live
	Duration() float64

	SetObserver(observer Observer)

	// Close releases the engine. No events are delivered afterwards.
	Close() error
}

// Provider creates a fresh engine for each playback
type Provider func() Engine
