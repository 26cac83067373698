package playback

import (
	"errors"
	"fmt"
	"sync"

	"playerkit/internal/engine"
	"playerkit/internal/options"
	"playerkit/internal/runloop"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrSealed is returned when registering into a sealed registry
var ErrSealed = errors.New("playback registry is sealed")

// Constructor builds a playback for the given options
type Constructor func(opts *options.Options) (Playback, error)

// Info describes a playback strategy
type Info struct {
	// Name is the unique identifier of the strategy
	Name string

	// CanPlay decides whether the strategy handles a source. mimeType may be empty.
	CanPlay func(source, mimeType string) bool

	// Factory builds the playback
	Factory Constructor
}

// Registry keeps playback strategies in registration order
type Registry struct {
	mu     sync.RWMutex
	infos  []Info
	sealed bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a strategy. Registering an existing name replaces it in
// place, keeping its position.
func (r *Registry) Register(info Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("playback %s: %w", info.Name, ErrSealed)
	}
	if info.Name == "" {
		return fmt.Errorf("playback name cannot be empty")
	}
	if info.CanPlay == nil {
		return fmt.Errorf("playback %s: predicate cannot be nil", info.Name)
	}
	if info.Factory == nil {
		return fmt.Errorf("playback %s: factory cannot be nil", info.Name)
	}

	_, index, found := lo.FindIndexOf(r.infos, func(existing Info) bool {
		return existing.Name == info.Name
	})
	if found {
		r.infos[index] = info
		return nil
	}
	r.infos = append(r.infos, info)
	return nil
}

// List returns the strategies in registration order
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Info(nil), r.infos...)
}

// Names returns the strategy names in registration order
func (r *Registry) Names() []string {
	return lo.Map(r.List(), func(info Info, _ int) string {
		return info.Name
	})
}

// Seal rejects any further registration
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether the registry is sealed
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// RegisterDefaults registers the progressive and adaptive strategies, each
// built on a fresh engine from provider.
func RegisterDefaults(r *Registry, provider engine.Provider, exec runloop.Executor, logger *zap.Logger) error {
	defaults := []Info{
		{
			Name:    NameProgressive,
			CanPlay: CanPlayProgressive,
			Factory: func(opts *options.Options) (Playback, error) {
				return NewProgressive(opts, provider(), exec, logger), nil
			},
		},
		{
			Name:    NameAdaptive,
			CanPlay: CanPlayAdaptive,
			Factory: func(opts *options.Options) (Playback, error) {
				return NewAdaptive(opts, provider(), exec, logger), nil
			},
		},
	}

	for _, info := range defaults {
		if err := r.Register(info); err != nil {
			return err
		}
	}
	return nil
}
