package playback

import (
	"fmt"

	"playerkit/internal/options"

	"go.uber.org/zap"
)

// Factory picks the first registered strategy able to play a source
type Factory struct {
	registry *Registry
	logger   *zap.Logger
}

// NewFactory creates a factory over registry
func NewFactory(registry *Registry, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		registry: registry,
		logger:   logger.Named("playback_factory"),
	}
}

// Create returns a playback for the source in opts. It never returns nil:
// when nothing matches, or every matching strategy fails to build, the
// result is a NoOp.
func (f *Factory) Create(opts *options.Options) Playback {
	source := opts.String(options.SourceURL)
	mimeType := opts.String(options.MimeType)

	for _, info := range f.registry.List() {
		ok, err := canPlay(info, source, mimeType)
		if err != nil {
			f.logger.Error("Playback support check failed",
				zap.String("playback", info.Name),
				zap.String("source", source),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		p, err := build(info, opts)
		if err != nil {
			f.logger.Error("Failed to create playback",
				zap.String("playback", info.Name),
				zap.String("source", source),
				zap.Error(err))
			continue
		}

		f.logger.Debug("Selected playback",
			zap.String("playback", info.Name),
			zap.String("source", source))
		return p
	}

	f.logger.Info("No playback can handle source",
		zap.String("source", source),
		zap.String("mime_type", mimeType))
	return NewNoOp(opts, f.logger)
}

func canPlay(info Info, source, mimeType string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return info.CanPlay(source, mimeType), nil
}

func build(info Info, opts *options.Options) (p Playback, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	p, err = info.Factory(opts)
	if err == nil && p == nil {
		err = fmt.Errorf("factory returned no playback")
	}
	return p, err
}
