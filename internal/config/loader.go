package config

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Loader reads player configuration files
type Loader struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewLoader creates a configuration loader on fs
func NewLoader(fs afero.Fs, logger *zap.Logger) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fs:     fs,
		logger: logger.Named("config"),
	}
}

// Load reads and validates the file at path. A missing file yields the
// defaults.
func (l *Loader) Load(path string) (*PlayerConfig, error) {
	l.logger.Debug("Loading player config", zap.String("path", path))

	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat player config: %w", err)
	}
	if !exists {
		l.logger.Warn("Player config not found, using defaults", zap.String("path", path))
		return Default(), nil
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read player config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Player config loaded",
		zap.String("path", path),
		zap.Int("sources", len(cfg.Sources)),
		zap.Int("api_port", cfg.API.Port))
	return cfg, nil
}
