package mediacontrol

import (
	"fmt"
	"math"
	"testing"

	"playerkit/internal/container"
	"playerkit/internal/events"
	"playerkit/internal/options"
	"playerkit/pkg/plugin"
	"playerkit/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newContainer(t *testing.T, source string) (*container.Container, *MediaControl, *testutil.StubPlaybackType) {
	t.Helper()
	stub := &testutil.StubPlaybackType{Name: "progressive", Extensions: []string{"mp4"}}
	l, err := testutil.NewStubLoader(stub)
	require.NoError(t, err)
	require.NoError(t, Register(l))

	opts := options.New()
	if source != "" {
		opts.Set(options.SourceURL, source)
	}
	c := container.New(l, opts, zap.NewNop())

	mc, ok := plugin.FindByType[*MediaControl](c.Plugins())
	require.True(t, ok)
	return c, mc, stub
}

func TestMediaControl_VisibilityFollowsContainer(t *testing.T) {
	c, mc, _ := newContainer(t, "")
	assert.False(t, mc.Visible(), "hidden until a source loads")

	c.Load("http://globo.com/video.mp4", "")
	assert.True(t, mc.Visible())

	c.Load("http://globo.com/video.xyz", "")
	assert.False(t, mc.Visible(), "hidden when nothing can play")
}

func TestMediaControl_ShowHide(t *testing.T) {
	_, mc, _ := newContainer(t, "http://globo.com/video.mp4")

	mc.Hide()
	assert.False(t, mc.Visible())

	mc.Show()
	assert.True(t, mc.Visible())
}

func TestMediaControl_TogglePlay(t *testing.T) {
	c, mc, stub := newContainer(t, "http://globo.com/video.mp4")
	rec := testutil.NewRecorder(c, events.MediaControlPlaying, events.MediaControlPaused)

	t.Run("plays when paused", func(t *testing.T) {
		mc.TogglePlay()
		assert.True(t, c.IsPlaying())
		assert.True(t, mc.Playing())
		assert.Equal(t, []string{events.MediaControlPlaying}, rec.Names())
	})

	t.Run("pauses when playing", func(t *testing.T) {
		rec.Clear()
		mc.TogglePlay()
		assert.False(t, c.IsPlaying())
		assert.False(t, mc.Playing())
		assert.Equal(t, []string{events.MediaControlPaused}, rec.Names())
	})

	assert.Equal(t, []string{"play", "pause"}, stub.Last().Calls)
}

func TestMediaControl_TracksPlaybackEvents(t *testing.T) {
	_, mc, stub := newContainer(t, "http://globo.com/video.mp4")
	p := stub.Last()

	assert.Equal(t, "00:00", mc.CurrentTime())

	p.SetDuration(3725)
	assert.Equal(t, "1:02:05", mc.Duration())

	p.Trigger(events.TimeUpdated, events.Payload{events.KeyPosition: 78})
	assert.Equal(t, "01:18", mc.CurrentTime())

	p.Play()
	assert.True(t, mc.Playing())

	p.Stop()
	assert.False(t, mc.Playing())
	assert.Equal(t, "00:00", mc.CurrentTime())
}

func TestMediaControl_ResetsOnPlaybackChange(t *testing.T) {
	c, mc, stub := newContainer(t, "http://globo.com/video.mp4")
	stub.Last().SetDuration(60)
	stub.Last().Play()

	c.Load("http://globo.com/other.mp4", "")
	assert.False(t, mc.Playing())
	assert.Equal(t, "00:00", mc.Duration())
}

func TestMediaControl_Destroy(t *testing.T) {
	c, mc, _ := newContainer(t, "http://globo.com/video.mp4")
	c.Render()
	require.NotNil(t, mc.View().Parent())

	mc.Destroy()
	assert.Nil(t, mc.View().Parent())

	c.SetMediaControlEnabled(false)
	assert.True(t, mc.Visible(), "no longer following the container")
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{78, "01:18"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{-5, "00:00"},
		{math.NaN(), "00:00"},
		{math.Inf(1), "00:00"},
		{math.Inf(-1), "00:00"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seconds), func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTime(tt.seconds))
		})
	}
}
