package events

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler is called when an event is triggered
type Handler func(payload Payload)

// Subscription represents an active event subscription
type Subscription interface {
	Unsubscribe()
}

// Emitter is the publish/subscribe surface shared by every entity in the
// player graph (playbacks, containers, cores and plugins).
type Emitter interface {
	ID() string
	On(event string, handler Handler) Subscription
	Once(event string, handler Handler) Subscription
	Off(event string, subs ...Subscription)
	Trigger(event string, payload Payload)
	ListenTo(other Emitter, event string, handler Handler) Subscription
	ListenToOnce(other Emitter, event string, handler Handler) Subscription
	StopListening()
}

// listenerEntry holds a handler with its unique subscription ID
type listenerEntry struct {
	id      int
	handler Handler
	once    bool
	removed bool
}

type subscription struct {
	bus   *Bus
	event string
	id    int
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.event, s.id)
}

// Bus is a synchronous event bus. Dispatch runs on the caller's goroutine,
// listeners for one event fire in registration order.
type Bus struct {
	id        string
	logger    *zap.Logger
	mu        sync.Mutex
	listeners map[string][]*listenerEntry
	nextID    int
	listening []*listened
}

// NewBus creates a new event bus. A nil logger discards listener failures.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		id:        uuid.NewString(),
		logger:    logger,
		listeners: make(map[string][]*listenerEntry),
	}
}

// ID returns the unique identifier of this bus
func (b *Bus) ID() string {
	return b.id
}

// On registers a persistent listener
func (b *Bus) On(event string, handler Handler) Subscription {
	return b.add(event, handler, false)
}

// Once registers a listener that is removed right before its first call
func (b *Bus) Once(event string, handler Handler) Subscription {
	return b.add(event, handler, true)
}

func (b *Bus) add(event string, handler Handler, once bool) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	entry := &listenerEntry{
		id:      b.nextID,
		handler: handler,
		once:    once,
	}
	b.listeners[event] = append(b.listeners[event], entry)

	return &subscription{
		bus:   b,
		event: event,
		id:    entry.id,
	}
}

// Off removes listeners. With subscriptions it removes exactly those; with
// only an event name it removes every listener for that event; with an empty
// name and no subscriptions it removes every listener on the bus.
func (b *Bus) Off(event string, subs ...Subscription) {
	if len(subs) > 0 {
		for _, sub := range subs {
			if sub != nil {
				sub.Unsubscribe()
			}
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if event == "" {
		for _, entries := range b.listeners {
			markRemoved(entries)
		}
		b.listeners = make(map[string][]*listenerEntry)
		return
	}

	markRemoved(b.listeners[event])
	delete(b.listeners, event)
}

func markRemoved(entries []*listenerEntry) {
	for _, entry := range entries {
		entry.removed = true
	}
}

// unsubscribe removes a specific listener by event name and subscription ID
func (b *Bus) unsubscribe(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLocked(event, id)
}

func (b *Bus) removeLocked(event string, id int) bool {
	entries, ok := b.listeners[event]
	if !ok {
		return false
	}

	for i, entry := range entries {
		if entry.id != id {
			continue
		}
		entry.removed = true

		// Copy instead of slicing in place: in-flight dispatches hold the old slice
		remaining := make([]*listenerEntry, 0, len(entries)-1)
		remaining = append(remaining, entries[:i]...)
		remaining = append(remaining, entries[i+1:]...)
		if len(remaining) == 0 {
			delete(b.listeners, event)
		} else {
			b.listeners[event] = remaining
		}
		return true
	}
	return false
}

// Trigger synchronously invokes every listener registered for event.
func (b *Bus) Trigger(event string, payload Payload) {
	b.mu.Lock()
	entries := append([]*listenerEntry(nil), b.listeners[event]...)
	b.mu.Unlock()

	for _, entry := range entries {
		if !b.claim(event, entry) {
			continue
		}
		b.invoke(event, entry, payload)
	}
}

// claim reports whether entry may still run. Once entries are removed here,
// before their handler runs.
func (b *Bus) claim(event string, entry *listenerEntry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry.removed {
		return false
	}
	if entry.once {
		b.removeLocked(event, entry.id)
	}
	return true
}

func (b *Bus) invoke(event string, entry *listenerEntry, payload Payload) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event listener failed",
				zap.String("bus", b.id),
				zap.String("event", event),
				zap.Any("panic", r))
		}
	}()

	entry.handler(payload)
}

// ListenTo subscribes to an event on another emitter and remembers the
// subscription so StopListening can drop it.
func (b *Bus) ListenTo(other Emitter, event string, handler Handler) Subscription {
	l := &listened{owner: b}
	l.inner = other.On(event, handler)
	b.track(l)
	return l
}

// ListenToOnce is ListenTo with Once semantics. The subscription is
// forgotten once it fires.
func (b *Bus) ListenToOnce(other Emitter, event string, handler Handler) Subscription {
	l := &listened{owner: b}
	l.inner = other.Once(event, func(payload Payload) {
		b.untrack(l)
		handler(payload)
	})
	b.track(l)
	return l
}

// listened is a subscription held on another emitter. Unsubscribing it also
// drops it from the owner's listening set.
type listened struct {
	owner *Bus
	inner Subscription
}

func (l *listened) Unsubscribe() {
	l.inner.Unsubscribe()
	l.owner.untrack(l)
}

func (b *Bus) track(l *listened) {
	b.mu.Lock()
	b.listening = append(b.listening, l)
	b.mu.Unlock()
}

func (b *Bus) untrack(l *listened) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, held := range b.listening {
		if held == l {
			b.listening = append(b.listening[:i:i], b.listening[i+1:]...)
			return
		}
	}
}

// StopListening removes every subscription this bus holds on other emitters
func (b *Bus) StopListening() {
	b.mu.Lock()
	subs := b.listening
	b.listening = nil
	b.mu.Unlock()

	for _, sub := range subs {
		sub.inner.Unsubscribe()
	}
}

// ListeningCount returns the number of subscriptions this bus holds on other
// emitters
func (b *Bus) ListeningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listening)
}

// ListenerCount returns the number of listeners registered for event
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event])
}
