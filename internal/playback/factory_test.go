package playback

import (
	"errors"
	"testing"
	"time"

	"playerkit/internal/clock"
	"playerkit/internal/engine"
	"playerkit/internal/options"
	"playerkit/internal/runloop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDefaultRegistry(t *testing.T) *Registry {
	t.Helper()
	clk := clock.NewMockClock(time.Now())
	provider := engine.SimulatedProvider(clk, engine.DefaultSimulatedConfig(), zap.NewNop())

	registry := NewRegistry()
	require.NoError(t, RegisterDefaults(registry, provider, runloop.Inline{}, zap.NewNop()))
	return registry
}

func TestFactory_SelectsBySource(t *testing.T) {
	factory := NewFactory(newDefaultRegistry(t), zap.NewNop())

	tests := []struct {
		name     string
		source   string
		mimeType string
		expected string
	}{
		{"mp4 file", "http://x/video.mp4", "", NameProgressive},
		{"upper case extension", "http://x/VIDEO.MP4", "", NameProgressive},
		{"query string ignored", "https://cdn.example.com/a.webm?token=abc#t=3", "", NameProgressive},
		{"audio file", "file:///music/song.mp3", "", NameProgressive},
		{"hls manifest", "https://x/live/index.m3u8", "", NameAdaptive},
		{"dash manifest", "https://x/vod/manifest.mpd", "", NameAdaptive},
		{"unknown extension", "http://x/video.xyz", "", NameNoOp},
		{"no extension", "http://x/stream", "", NameNoOp},
		{"mime overrides extension", "http://x/stream", "video/mp4", NameProgressive},
		{"hls mime type", "http://x/video.mp4", "application/vnd.apple.mpegURL", NameAdaptive},
		{"mime with parameters", "http://x/a", "audio/mpeg; codecs=mp3", NameProgressive},
		{"unsupported mime", "http://x/video.mp4", "text/html", NameNoOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.New(
				options.Pair{Key: options.SourceURL, Value: tt.source},
				options.Pair{Key: options.MimeType, Value: tt.mimeType},
			)

			p := factory.Create(opts)
			require.NotNil(t, p)
			assert.Equal(t, tt.expected, p.Name())
			assert.Same(t, opts, p.Options())
		})
	}
}

func TestFactory_NoOpFallback(t *testing.T) {
	factory := NewFactory(NewRegistry(), zap.NewNop())

	p := factory.Create(options.New(options.Pair{Key: options.SourceURL, Value: "http://x/video.xyz"}))
	require.NotNil(t, p)
	assert.True(t, IsNoOp(p))
	assert.Equal(t, 0.0, p.Duration())
	assert.False(t, p.IsPlaying())

	p.Play()
	assert.False(t, p.IsPlaying(), "noop never plays")
	assert.Equal(t, StateIdle, p.State())
}

func TestFactory_FirstMatchWins(t *testing.T) {
	registry := NewRegistry()
	var built []string

	register := func(name string) {
		require.NoError(t, registry.Register(Info{
			Name:    name,
			CanPlay: func(string, string) bool { return true },
			Factory: func(opts *options.Options) (Playback, error) {
				built = append(built, name)
				return NewNoOp(opts, nil), nil
			},
		}))
	}
	register("first")
	register("second")

	NewFactory(registry, zap.NewNop()).Create(options.New())
	assert.Equal(t, []string{"first"}, built)
}

func TestFactory_SkipsFailingStrategies(t *testing.T) {
	registry := NewRegistry()
	always := func(string, string) bool { return true }

	require.NoError(t, registry.Register(Info{
		Name:    "erroring",
		CanPlay: always,
		Factory: func(*options.Options) (Playback, error) { return nil, errors.New("no engine") },
	}))
	require.NoError(t, registry.Register(Info{
		Name:    "panicking",
		CanPlay: always,
		Factory: func(*options.Options) (Playback, error) { panic("boom") },
	}))
	require.NoError(t, registry.Register(Info{
		Name:    "nil",
		CanPlay: always,
		Factory: func(*options.Options) (Playback, error) { return nil, nil },
	}))

	p := NewFactory(registry, zap.NewNop()).Create(options.New())
	assert.True(t, IsNoOp(p))
}

func TestFactory_PanickingSupportCheckIsSkipped(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Info{
		Name:    "broken",
		CanPlay: func(string, string) bool { panic("bad predicate") },
		Factory: func(opts *options.Options) (Playback, error) { return NewNoOp(opts, nil), nil },
	}))

	opts := options.New(options.Pair{Key: options.SourceURL, Value: "http://x/video.mp4"})

	var p Playback
	require.NotPanics(t, func() { p = NewFactory(registry, zap.NewNop()).Create(opts) })
	assert.True(t, IsNoOp(p))

	built := false
	require.NoError(t, registry.Register(Info{
		Name:    "working",
		CanPlay: func(string, string) bool { return true },
		Factory: func(opts *options.Options) (Playback, error) {
			built = true
			return NewNoOp(opts, nil), nil
		},
	}))

	NewFactory(registry, zap.NewNop()).Create(opts)
	assert.True(t, built, "next strategy is still tried")
}

func TestRegistry_Register(t *testing.T) {
	always := func(string, string) bool { return true }
	factory := func(opts *options.Options) (Playback, error) { return NewNoOp(opts, nil), nil }

	tests := []struct {
		name    string
		info    Info
		wantErr bool
	}{
		{"valid", Info{Name: "a", CanPlay: always, Factory: factory}, false},
		{"empty name", Info{CanPlay: always, Factory: factory}, true},
		{"nil predicate", Info{Name: "a", Factory: factory}, true},
		{"nil factory", Info{Name: "a", CanPlay: always}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.info)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	registry := NewRegistry()
	never := func(string, string) bool { return false }
	always := func(string, string) bool { return true }
	factory := func(opts *options.Options) (Playback, error) { return NewNoOp(opts, nil), nil }

	require.NoError(t, registry.Register(Info{Name: "a", CanPlay: never, Factory: factory}))
	require.NoError(t, registry.Register(Info{Name: "b", CanPlay: never, Factory: factory}))
	require.NoError(t, registry.Register(Info{Name: "a", CanPlay: always, Factory: factory}))

	assert.Equal(t, []string{"a", "b"}, registry.Names())
	assert.True(t, registry.List()[0].CanPlay("", ""))
}

func TestRegistry_Seal(t *testing.T) {
	registry := NewRegistry()
	registry.Seal()
	assert.True(t, registry.Sealed())

	err := registry.Register(Info{
		Name:    "late",
		CanPlay: func(string, string) bool { return true },
		Factory: func(opts *options.Options) (Playback, error) { return NewNoOp(opts, nil), nil },
	})
	assert.ErrorIs(t, err, ErrSealed)
	assert.Empty(t, registry.Names())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "mp4", Extension("http://x/a/b.MP4?x=1"))
	assert.Equal(t, "", Extension("http://x/a/"))
	assert.Equal(t, "m3u8", Extension("/local/playlist.m3u8"))
}
