package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_TriggerOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls []string
	bus.On("play", func(Payload) { calls = append(calls, "first") })
	bus.On("play", func(Payload) { calls = append(calls, "second") })
	bus.On("pause", func(Payload) { calls = append(calls, "other") })

	bus.Trigger("play", nil)

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBus_TriggerPassesPayload(t *testing.T) {
	bus := NewBus(nil)

	var got float64
	bus.On(TimeUpdated, func(p Payload) { got = p.Float(KeyPosition) })

	bus.Trigger(TimeUpdated, Payload{KeyPosition: 12.5})
	assert.Equal(t, 12.5, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	count := 0
	sub := bus.On("play", func(Payload) { count++ })
	bus.Trigger("play", nil)
	sub.Unsubscribe()
	bus.Trigger("play", nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.ListenerCount("play"))

	// Unsubscribing twice is harmless
	sub.Unsubscribe()
}

func TestBus_Once(t *testing.T) {
	t.Run("fires a single time", func(t *testing.T) {
		bus := NewBus(nil)
		count := 0
		bus.Once("play", func(Payload) { count++ })

		bus.Trigger("play", nil)
		bus.Trigger("play", nil)

		assert.Equal(t, 1, count)
		assert.Equal(t, 0, bus.ListenerCount("play"))
	})

	t.Run("re-triggering from its own body does not re-invoke it", func(t *testing.T) {
		bus := NewBus(nil)
		count := 0
		bus.Once("play", func(Payload) {
			count++
			bus.Trigger("play", nil)
		})

		bus.Trigger("play", nil)
		assert.Equal(t, 1, count)
	})

	t.Run("nested trigger from an earlier listener consumes it once", func(t *testing.T) {
		bus := NewBus(nil)
		count := 0
		nested := false
		bus.On("play", func(Payload) {
			if !nested {
				nested = true
				bus.Trigger("play", nil)
			}
		})
		bus.Once("play", func(Payload) { count++ })

		bus.Trigger("play", nil)
		assert.Equal(t, 1, count)
	})
}

func TestBus_Off(t *testing.T) {
	tests := []struct {
		name      string
		off       func(bus *Bus, subs []Subscription)
		wantPlay  int
		wantPause int
	}{
		{
			name:      "specific subscription",
			off:       func(bus *Bus, subs []Subscription) { bus.Off("play", subs[0]) },
			wantPlay:  1,
			wantPause: 1,
		},
		{
			name:      "every listener of one event",
			off:       func(bus *Bus, subs []Subscription) { bus.Off("play") },
			wantPlay:  0,
			wantPause: 1,
		},
		{
			name:      "every listener on the bus",
			off:       func(bus *Bus, subs []Subscription) { bus.Off("") },
			wantPlay:  0,
			wantPause: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus(nil)
			play, pause := 0, 0
			subs := []Subscription{
				bus.On("play", func(Payload) { play++ }),
				bus.On("play", func(Payload) { play++ }),
				bus.On("pause", func(Payload) { pause++ }),
			}

			tt.off(bus, subs)
			bus.Trigger("play", nil)
			bus.Trigger("pause", nil)

			assert.Equal(t, tt.wantPlay, play)
			assert.Equal(t, tt.wantPause, pause)
		})
	}
}

func TestBus_ReentrantSubscribeDuringDispatch(t *testing.T) {
	bus := NewBus(nil)

	var calls []string
	bus.On("play", func(Payload) {
		calls = append(calls, "first")
		bus.On("play", func(Payload) { calls = append(calls, "late") })
	})
	bus.On("play", func(Payload) { calls = append(calls, "second") })

	bus.Trigger("play", nil)
	assert.Equal(t, []string{"first", "second"}, calls, "listeners added during dispatch wait for the next trigger")

	calls = nil
	bus.Trigger("play", nil)
	assert.Equal(t, []string{"first", "second", "late"}, calls)
}

func TestBus_UnsubscribeDuringDispatchSkipsLaterListener(t *testing.T) {
	bus := NewBus(nil)

	var second Subscription
	calls := 0
	bus.On("play", func(Payload) { second.Unsubscribe() })
	second = bus.On("play", func(Payload) { calls++ })

	bus.Trigger("play", nil)
	assert.Equal(t, 0, calls)
}

func TestBus_ListenerPanicIsIsolated(t *testing.T) {
	bus := NewBus(zap.NewNop())

	reached := false
	bus.On("error", func(Payload) { panic(errors.New("boom")) })
	bus.On("error", func(Payload) { reached = true })

	require.NotPanics(t, func() { bus.Trigger("error", nil) })
	assert.True(t, reached, "sibling listener must still run")

	// The bus keeps working afterwards
	reached = false
	bus.Trigger("error", nil)
	assert.True(t, reached)
}

func TestBus_ListenToAndStopListening(t *testing.T) {
	observer := NewBus(nil)
	first := NewBus(nil)
	second := NewBus(nil)

	count := 0
	observer.ListenTo(first, Playing, func(Payload) { count++ })
	observer.ListenTo(second, Paused, func(Payload) { count++ })
	observer.ListenToOnce(second, Ended, func(Payload) { count++ })

	first.Trigger(Playing, nil)
	second.Trigger(Paused, nil)
	assert.Equal(t, 2, count)

	observer.StopListening()

	first.Trigger(Playing, nil)
	second.Trigger(Paused, nil)
	second.Trigger(Ended, nil)
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, first.ListenerCount(Playing))
	assert.Equal(t, 0, second.ListenerCount(Ended))
	assert.Equal(t, 0, observer.ListeningCount())
}

func TestBus_UnsubscribeForgetsListenedSubscription(t *testing.T) {
	observer := NewBus(nil)
	other := NewBus(nil)

	for i := 0; i < 10; i++ {
		sub := observer.ListenTo(other, Playing, func(Payload) {})
		sub.Unsubscribe()
	}
	assert.Equal(t, 0, observer.ListeningCount())
	assert.Equal(t, 0, other.ListenerCount(Playing))

	kept := observer.ListenTo(other, Paused, func(Payload) {})
	dropped := observer.ListenTo(other, Ended, func(Payload) {})
	dropped.Unsubscribe()
	assert.Equal(t, 1, observer.ListeningCount())

	// Unsubscribing twice is harmless
	dropped.Unsubscribe()
	kept.Unsubscribe()
	kept.Unsubscribe()
	assert.Equal(t, 0, observer.ListeningCount())
}

func TestBus_ListenToOnceForgetsAfterFiring(t *testing.T) {
	observer := NewBus(nil)
	other := NewBus(nil)

	count := 0
	observer.ListenToOnce(other, Ended, func(Payload) { count++ })
	require.Equal(t, 1, observer.ListeningCount())

	other.Trigger(Ended, nil)
	other.Trigger(Ended, nil)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, observer.ListeningCount())
}

func TestBus_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, NewBus(nil).ID(), NewBus(nil).ID())
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic(DidLoadSource))
	assert.True(t, IsPublic(TimeUpdated))
	assert.False(t, IsPublic(ContainerDestroyed))
	assert.False(t, IsPublic("unknown"))
	assert.Contains(t, PublicEvents(), Playing)
}

func TestPayload_Readers(t *testing.T) {
	err := errors.New("decode failed")
	p := Payload{
		KeyPosition: 3,
		KeySource:   "http://x/video.mp4",
		KeyError:    err,
	}

	assert.Equal(t, 3.0, p.Float(KeyPosition))
	assert.Equal(t, 3, p.Int(KeyPosition))
	assert.Equal(t, "http://x/video.mp4", p.String(KeySource))
	assert.Equal(t, err, p.Err())

	var empty Payload
	assert.Equal(t, 0.0, empty.Float(KeyDuration))
	assert.Nil(t, empty.Err())
}
