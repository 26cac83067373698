package eventstream

import (
	"errors"
	"testing"
	"time"

	"playerkit/internal/clock"
	"playerkit/internal/core"
	"playerkit/internal/engine"
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/pkg/plugin"
	"playerkit/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	messages []Message
}

func (c *captureSink) Publish(msg Message) {
	c.messages = append(c.messages, msg)
}

func (c *captureSink) names() []string {
	names := make([]string, 0, len(c.messages))
	for _, msg := range c.messages {
		names = append(names, msg.Event)
	}
	return names
}

var playlist = []string{"http://x/one.mp4", "http://x/two.mp4"}

func newCore(t *testing.T) (*core.Core, *State, *captureSink, *testutil.StubPlaybackType) {
	t.Helper()
	stub := &testutil.StubPlaybackType{Name: "progressive", Extensions: []string{"mp4"}}
	l, err := testutil.NewStubLoader(stub)
	require.NoError(t, err)

	state := NewState()
	sink := &captureSink{}
	require.NoError(t, Register(l, state, sink, clock.NewMockClock(testutil.Epoch)))

	c := core.NewFactory(playlist, l, nil, zap.NewNop()).Create()
	return c, state, sink, stub
}

func TestNewState_Empty(t *testing.T) {
	snap := NewState().Snapshot()
	assert.Equal(t, -1, snap.ActiveIndex)
	assert.Empty(t, snap.Containers)
	assert.NotNil(t, snap.Containers)
}

func TestStream_InitialSnapshot(t *testing.T) {
	c, state, sink, _ := newCore(t)

	snap := state.Snapshot()
	assert.Equal(t, c.ID(), snap.CoreID)
	assert.Equal(t, 0, snap.ActiveIndex)
	assert.Equal(t, testutil.Epoch, snap.UpdatedAt)
	require.Len(t, snap.Containers, 2)
	assert.Equal(t, ContainerState{
		Index:    0,
		Source:   "http://x/one.mp4",
		Playback: "progressive",
		State:    "idle",
	}, snap.Containers[0])
	assert.Empty(t, sink.messages)
}

func TestStream_PublishesCoreEvents(t *testing.T) {
	c, state, sink, stub := newCore(t)

	stub.Created[0].SetDuration(30)
	stub.Created[0].Play()
	require.NoError(t, c.Next())

	assert.Equal(t, []string{
		events.Ready,
		events.Playing,
		events.WillChangeActiveContainer,
		events.DidChangeActiveContainer,
	}, sink.names(), "the outgoing container pauses after forwarding stops")

	ready := sink.messages[0]
	assert.Equal(t, c.ID(), ready.CoreID)
	assert.Equal(t, "http://x/one.mp4", ready.Source)
	assert.Equal(t, testutil.Epoch, ready.Time)
	assert.Equal(t, 30.0, ready.Payload[events.KeyDuration])

	snap := state.Snapshot()
	assert.Equal(t, 1, snap.ActiveIndex)
	assert.Equal(t, events.DidChangeActiveContainer, snap.LastEvent)
	assert.Equal(t, "paused", snap.Containers[0].State)
	assert.Equal(t, 30.0, snap.Containers[0].Duration)
	assert.False(t, snap.Containers[0].Playing)
}

func TestStream_InactiveContainersAreNotPublished(t *testing.T) {
	_, _, sink, stub := newCore(t)

	stub.Created[1].Play()
	assert.Empty(t, sink.messages)
}

func TestStream_ErrorsBecomeStrings(t *testing.T) {
	_, _, sink, stub := newCore(t)

	stub.Created[0].Trigger(events.Error, events.Payload{events.KeyError: errors.New("decode failed")})

	require.Len(t, sink.messages, 1)
	assert.Equal(t, "decode failed", sink.messages[0].Payload[events.KeyError])
}

func TestStream_CoreDestroyedClearsSnapshot(t *testing.T) {
	c, state, sink, _ := newCore(t)
	c.Destroy()

	snap := state.Snapshot()
	assert.Equal(t, -1, snap.ActiveIndex)
	assert.Empty(t, snap.Containers)
	assert.Equal(t, events.CoreDestroyed, snap.LastEvent)
	assert.Contains(t, sink.names(), events.CoreDestroyed)
	assert.Equal(t, "http://x/one.mp4", sink.messages[len(sink.messages)-1].Source)
}

func TestStream_NilSink(t *testing.T) {
	stub := &testutil.StubPlaybackType{Name: "progressive", Extensions: []string{"mp4"}}
	l, err := testutil.NewStubLoader(stub)
	require.NoError(t, err)
	state := NewState()
	require.NoError(t, Register(l, state, nil, nil))

	c := core.NewFactory(playlist, l, nil, zap.NewNop()).Create()
	stub.Created[0].Play()

	assert.True(t, state.Snapshot().Containers[0].Playing)
	_, ok := plugin.FindByType[*Stream](c.Plugins())
	assert.True(t, ok)
}

func TestStream_SimulatedPlayback(t *testing.T) {
	env, err := testutil.NewTestEnv(engine.SimulatedConfig{
		Duration:  2,
		Tick:      500 * time.Millisecond,
		LoadDelay: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	state := NewState()
	var sink captureSink
	require.NoError(t, Register(env.Loader, state, SinkFunc(sink.Publish), env.Clock))

	opts := options.New(options.Pair{Key: options.Autoplay, Value: true})
	core.NewFactory([]string{"http://x/clip.mp4"}, env.Loader, opts, env.Logger).Create()

	env.Advance(100 * time.Millisecond)
	env.Advance(time.Second)

	snap := state.Snapshot()
	require.Len(t, snap.Containers, 1)
	assert.Equal(t, "playing", snap.Containers[0].State)
	assert.InDelta(t, 1.0, snap.Containers[0].Position, 1e-9)
	assert.Equal(t, 2.0, snap.Containers[0].Duration)
	assert.Contains(t, sink.names(), events.TimeUpdated)
	assert.Equal(t, testutil.Epoch.Add(1100*time.Millisecond), snap.UpdatedAt)
}
