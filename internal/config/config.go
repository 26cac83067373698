// Package config reads the playerd configuration file and applies
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"playerkit/internal/engine"
	"playerkit/internal/options"

	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the daemon
const (
	EnvConfigPath = "PLAYERD_CONFIG"
	EnvAPIPort    = "PLAYERD_API_PORT"
	EnvLogLevel   = "PLAYERD_LOG_LEVEL"
)

// DefaultPath is used when neither a flag nor PLAYERD_CONFIG names a file
const DefaultPath = "./configs/playerd.yaml"

// PlayerConfig is the playerd.yaml structure
type PlayerConfig struct {
	// Sources is the playlist, one container per entry
	Sources []string `yaml:"sources"`

	// Options are handed to the core in file order
	Options yaml.Node `yaml:"options"`

	Engine      EngineConfig `yaml:"engine"`
	API         APIConfig    `yaml:"api"`
	LogLevel    string       `yaml:"log_level"`
	Development bool         `yaml:"development"`
}

// EngineConfig tunes the simulated media engine
type EngineConfig struct {
	Duration  float64       `yaml:"duration"`
	Tick      time.Duration `yaml:"tick"`
	LoadDelay time.Duration `yaml:"load_delay"`
	Live      bool          `yaml:"live"`
}

// APIConfig configures the HTTP API
type APIConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used for missing fields
func Default() *PlayerConfig {
	sim := engine.DefaultSimulatedConfig()
	return &PlayerConfig{
		Sources: []string{},
		Engine: EngineConfig{
			Duration:  sim.Duration,
			Tick:      sim.Tick,
			LoadDelay: sim.LoadDelay,
			Live:      sim.Live,
		},
		API:      APIConfig{Port: 8081},
		LogLevel: "info",
	}
}

// Parse decodes data over the defaults and validates the result
func Parse(data []byte) (*PlayerConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse player config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.Getenv.
func (c *PlayerConfig) ApplyEnv(lookup func(string) string) error {
	if port := lookup(EnvAPIPort); port != "" {
		value, err := cast.ToIntE(port)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvAPIPort, port, err)
		}
		c.API.Port = value
	}
	if level := lookup(EnvLogLevel); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	return c.Validate()
}

// Validate reports every problem with the configuration at once
func (c *PlayerConfig) Validate() error {
	var errs error

	for i, source := range c.Sources {
		if strings.TrimSpace(source) == "" {
			errs = multierr.Append(errs, fmt.Errorf("sources[%d]: empty source", i))
		}
	}
	if !isEmpty(&c.Options) && c.Options.Kind != yaml.MappingNode {
		errs = multierr.Append(errs, fmt.Errorf("options: must be a mapping (line %d)", c.Options.Line))
	}
	if c.Engine.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.duration: must not be negative, got %v", c.Engine.Duration))
	}
	if c.Engine.Tick <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.tick: must be positive, got %v", c.Engine.Tick))
	}
	if c.Engine.LoadDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.load_delay: must not be negative, got %v", c.Engine.LoadDelay))
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("api.port: out of range: %d", c.API.Port))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log_level: %w", err))
	}

	if errs != nil {
		return fmt.Errorf("invalid player config: %w", errs)
	}
	return nil
}

// Level returns the parsed log level
func (c *PlayerConfig) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SimulatedConfig converts the engine section for the simulated engine
func (c *PlayerConfig) SimulatedConfig() engine.SimulatedConfig {
	return engine.SimulatedConfig{
		Duration:  c.Engine.Duration,
		Tick:      c.Engine.Tick,
		LoadDelay: c.Engine.LoadDelay,
		Live:      c.Engine.Live,
	}
}

// PlayerOptions returns the options section in file order
func (c *PlayerConfig) PlayerOptions() (*options.Options, error) {
	opts := options.New()
	if isEmpty(&c.Options) {
		return opts, nil
	}
	if c.Options.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("options: must be a mapping (line %d)", c.Options.Line)
	}

	content := c.Options.Content
	for i := 0; i+1 < len(content); i += 2 {
		var key string
		if err := content[i].Decode(&key); err != nil {
			return nil, fmt.Errorf("options: bad key on line %d: %w", content[i].Line, err)
		}
		var value any
		if err := content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("options.%s: %w", key, err)
		}
		opts.Set(key, value)
	}
	return opts, nil
}

func isEmpty(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
