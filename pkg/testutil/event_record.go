package testutil

import (
	"sync"
	"time"

	"playerkit/internal/events"
)

// EventRecord records an event seen on an emitter for testing/verification
type EventRecord struct {
	Timestamp time.Time
	Event     string
	Payload   events.Payload
}

// FilterEvents filters records by event name
func FilterEvents(records []EventRecord, event string) []EventRecord {
	var filtered []EventRecord
	for _, record := range records {
		if record.Event == event {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// FindEventWithData finds the latest record of event with a matching payload key/value
func FindEventWithData(records []EventRecord, event, dataKey string, dataValue any) *EventRecord {
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if record.Event == event {
			if val, ok := record.Payload[dataKey]; ok && val == dataValue {
				return &record
			}
		}
	}
	return nil
}

// Recorder subscribes to events on an emitter and keeps what it sees
type Recorder struct {
	mu      sync.Mutex
	records []EventRecord
	subs    []events.Subscription
}

// NewRecorder records every listed event on emitter. With no names it
// records the public vocabulary plus the internal lifecycle events.
func NewRecorder(emitter events.Emitter, names ...string) *Recorder {
	if len(names) == 0 {
		names = append(events.PublicEvents(), events.ContainerDestroyed, events.CoreDestroyed)
	}

	r := &Recorder{}
	for _, name := range names {
		name := name
		r.subs = append(r.subs, emitter.On(name, func(payload events.Payload) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.records = append(r.records, EventRecord{
				Timestamp: time.Now(),
				Event:     name,
				Payload:   payload,
			})
		}))
	}
	return r
}

// Records returns a copy of everything recorded so far
func (r *Recorder) Records() []EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventRecord(nil), r.records...)
}

// Names returns the recorded event names in order
func (r *Recorder) Names() []string {
	records := r.Records()
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Event)
	}
	return names
}

// Count returns how many times event was recorded
func (r *Recorder) Count(event string) int {
	return len(FilterEvents(r.Records(), event))
}

// Clear drops the recorded events
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// Stop unsubscribes from the emitter
func (r *Recorder) Stop() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}
