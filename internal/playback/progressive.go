package playback

import (
	"net/url"
	"path"
	"strings"

	"playerkit/internal/engine"
	"playerkit/internal/options"
	"playerkit/internal/runloop"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// NameProgressive is the name of the progressive file playback
const NameProgressive = "progressive"

var progressiveExtensions = []string{"mp4", "m4v", "mov", "webm", "mp3", "m4a", "aac", "ogg", "oga", "wav"}

// Progressive plays a single media file downloaded progressively
type Progressive struct {
	*Media
}

// NewProgressive creates a progressive playback on top of eng
func NewProgressive(opts *options.Options, eng engine.Engine, exec runloop.Executor, logger *zap.Logger) *Progressive {
	return &Progressive{Media: newMedia(NameProgressive, opts, eng, exec, logger)}
}

// CanPlayProgressive reports whether source is a progressive media file. A
// non-empty mime type decides on its own.
func CanPlayProgressive(source, mimeType string) bool {
	if mimeType != "" {
		mime := normalizeMime(mimeType)
		if lo.Contains(adaptiveMimeTypes, mime) {
			return false
		}
		return strings.HasPrefix(mime, "video/") || strings.HasPrefix(mime, "audio/")
	}
	return lo.Contains(progressiveExtensions, Extension(source))
}

// Extension returns the lower-cased file extension of the source path,
// without the dot. Query strings and fragments are ignored.
func Extension(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func normalizeMime(mimeType string) string {
	mime, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}
