package engine

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"playerkit/internal/clock"

	"go.uber.org/zap"
)

// ErrNotReady is returned when playback is requested before the source is ready
var ErrNotReady = errors.New("engine not ready")

// ErrUnreachable is reported for sources on the reserved .invalid domain
var ErrUnreachable = errors.New("source unreachable")

// SimulatedConfig tunes the simulated engine
type SimulatedConfig struct {
	// Duration of every opened source, in seconds
	Duration float64

	// Tick is the interval between time updates while playing
	Tick time.Duration

	// LoadDelay is the time between Open and EventReady
	LoadDelay time.Duration

	// Live sources report a zero duration and never end
	Live bool
}

// DefaultSimulatedConfig returns the configuration used when none is given
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Duration:  60,
		Tick:      250 * time.Millisecond,
		LoadDelay: 100 * time.Millisecond,
	}
}

type simState int

const (
	simIdle simState = iota
	simOpening
	simReady
	simPlaying
	simPaused
	simEnded
	simClosed
)

// Simulated is a clock-driven Engine that plays silence. Position advances by
// Tick on every timer step while playing.
type Simulated struct {
	clock    clock.Clock
	cfg      SimulatedConfig
	logger   *zap.Logger
	mu       sync.Mutex
	state    simState
	source   string
	position float64
	observer Observer
	timer    clock.Timer
}

// NewSimulated creates a simulated engine
func NewSimulated(clk clock.Clock, cfg SimulatedConfig, logger *zap.Logger) *Simulated {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultSimulatedConfig().Tick
	}
	return &Simulated{
		clock:  clk,
		cfg:    cfg,
		logger: logger.Named("engine"),
	}
}

// SimulatedProvider returns a Provider creating simulated engines
func SimulatedProvider(clk clock.Clock, cfg SimulatedConfig, logger *zap.Logger) Provider {
	return func() Engine {
		return NewSimulated(clk, cfg, logger)
	}
}

// SetObserver sets the event observer
func (s *Simulated) SetObserver(observer Observer) {
	s.mu.Lock()
	s.observer = observer
	s.mu.Unlock()
}

// Open validates the source and schedules readiness
func (s *Simulated) Open(source string) error {
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("invalid source %q: %w", source, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	s.mu.Lock()
	if s.state == simClosed {
		s.mu.Unlock()
		return fmt.Errorf("engine closed")
	}
	s.stopTimerLocked()
	s.source = source
	s.position = 0
	s.state = simOpening
	s.timer = s.clock.AfterFunc(s.cfg.LoadDelay, s.finishOpen)
	s.mu.Unlock()

	s.logger.Debug("Opening source", zap.String("source", source))
	s.emit(Event{Type: EventBuffering})
	return nil
}

func (s *Simulated) finishOpen() {
	s.mu.Lock()
	if s.state != simOpening {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	if isUnreachable(s.source) {
		s.state = simIdle
		s.mu.Unlock()
		s.emit(Event{Type: EventError, Err: fmt.Errorf("%w: %s", ErrUnreachable, s.source)})
		return
	}

	s.state = simReady
	duration := s.durationLocked()
	s.mu.Unlock()

	s.emit(Event{Type: EventReady, Duration: duration})
}

func isUnreachable(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return true
	}
	return strings.HasSuffix(u.Hostname(), ".invalid")
}

// Play starts or resumes playback
func (s *Simulated) Play() error {
	s.mu.Lock()
	switch s.state {
	case simReady, simPaused, simEnded:
	case simPlaying:
		s.mu.Unlock()
		return nil
	default:
		s.mu.Unlock()
		return ErrNotReady
	}

	if s.state == simEnded {
		s.position = 0
	}
	s.state = simPlaying
	s.scheduleTickLocked()
	position := s.position
	s.mu.Unlock()

	s.emit(Event{Type: EventPlaying, Position: position})
	return nil
}

// Pause suspends playback
func (s *Simulated) Pause() error {
	s.mu.Lock()
	if s.state != simPlaying {
		s.mu.Unlock()
		return nil
	}
	s.stopTimerLocked()
	s.state = simPaused
	position := s.position
	s.mu.Unlock()

	s.emit(Event{Type: EventPaused, Position: position})
	return nil
}

// Stop halts playback and rewinds
func (s *Simulated) Stop() error {
	s.mu.Lock()
	switch s.state {
	case simPlaying, simPaused, simEnded:
	default:
		s.mu.Unlock()
		return nil
	}
	s.stopTimerLocked()
	s.state = simReady
	s.position = 0
	s.mu.Unlock()

	s.emit(Event{Type: EventStopped})
	return nil
}

// Seek moves the position, clamped to the media bounds
func (s *Simulated) Seek(seconds float64) error {
	s.mu.Lock()
	switch s.state {
	case simReady, simPlaying, simPaused, simEnded:
	default:
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.cfg.Live {
		s.mu.Unlock()
		return fmt.Errorf("live source is not seekable")
	}

	if seconds < 0 {
		seconds = 0
	}
	if seconds > s.cfg.Duration {
		seconds = s.cfg.Duration
	}
	s.position = seconds
	if s.state == simEnded {
		s.state = simPaused
	}
	duration := s.durationLocked()
	s.mu.Unlock()

	s.emit(Event{Type: EventTimeUpdate, Position: seconds, Duration: duration})
	return nil
}

// Position returns the current position in seconds
func (s *Simulated) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the media duration in seconds
func (s *Simulated) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == simIdle || s.state == simOpening {
		return 0
	}
	return s.durationLocked()
}

func (s *Simulated) durationLocked() float64 {
	if s.cfg.Live {
		return 0
	}
	return s.cfg.Duration
}

// Close stops every timer and detaches the observer
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.state = simClosed
	s.observer = nil
	return nil
}

func (s *Simulated) scheduleTickLocked() {
	s.timer = s.clock.AfterFunc(s.cfg.Tick, s.tick)
}

func (s *Simulated) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Simulated) tick() {
	s.mu.Lock()
	if s.state != simPlaying {
		s.mu.Unlock()
		return
	}

	s.position += s.cfg.Tick.Seconds()
	ended := false
	if !s.cfg.Live && s.position >= s.cfg.Duration {
		s.position = s.cfg.Duration
		s.state = simEnded
		s.timer = nil
		ended = true
	} else {
		s.scheduleTickLocked()
	}
	position := s.position
	duration := s.durationLocked()
	s.mu.Unlock()

	s.emit(Event{Type: EventTimeUpdate, Position: position, Duration: duration})
	if ended {
		s.emit(Event{Type: EventEnded, Position: position, Duration: duration})
	}
}

func (s *Simulated) emit(ev Event) {
	s.mu.Lock()
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(ev)
	}
}
