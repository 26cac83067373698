package playback

import (
	"playerkit/internal/engine"
	"playerkit/internal/options"
	"playerkit/internal/runloop"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// NameAdaptive is the name of the adaptive streaming playback
const NameAdaptive = "adaptive"

var adaptiveExtensions = []string{"m3u8", "mpd"}

var adaptiveMimeTypes = []string{
	"application/x-mpegurl",
	"application/vnd.apple.mpegurl",
	"audio/mpegurl",
	"audio/x-mpegurl",
	"application/dash+xml",
}

// Adaptive plays HLS and DASH manifests. Live streams cannot seek.
type Adaptive struct {
	*Media
}

// NewAdaptive creates an adaptive playback on top of eng
func NewAdaptive(opts *options.Options, eng engine.Engine, exec runloop.Executor, logger *zap.Logger) *Adaptive {
	m := newMedia(NameAdaptive, opts, eng, exec, logger)
	m.liveCapable = true
	return &Adaptive{Media: m}
}

// CanPlayAdaptive reports whether source is an HLS or DASH manifest
func CanPlayAdaptive(source, mimeType string) bool {
	if mimeType != "" {
		return lo.Contains(adaptiveMimeTypes, normalizeMime(mimeType))
	}
	return lo.Contains(adaptiveExtensions, Extension(source))
}
