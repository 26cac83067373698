package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Priority constants for plugin registration.
// Higher priority values override lower priority plugins with the same name.
const (
	// PriorityDefault is the default priority for plugins.
	// Built-in implementations should use this priority.
	PriorityDefault = 0

	// PriorityOverride is used by host applications to replace a
	// built-in plugin with their own implementation.
	PriorityOverride = 100
)

// DefaultOrder is used when a registration does not specify an Order
const DefaultOrder = 50

// ErrSealed is returned when registering into a sealed registry
var ErrSealed = errors.New("plugin registry is sealed")

// PluginInfo contains metadata about a registered plugin.
type PluginInfo[C any] struct {
	// Name is the unique identifier for the plugin.
	// Plugins with the same name will override based on priority.
	Name string

	// Description is a human-readable description of the plugin.
	Description string

	// Priority determines which plugin wins when multiple plugins
	// register with the same name. Higher priority wins.
	Priority int

	// Factory creates new instances of the plugin.
	Factory Factory[C]

	// Order specifies the creation order. Lower values are created (and
	// rendered) first, so their surfaces end up below later ones.
	Order int
}

// Registry manages plugin registration and instantiation for one scope.
// It supports priority-based override and is sealed once the first core is
// built.
type Registry[C any] struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	plugins map[string]PluginInfo[C]
	order   []string
	sealed  bool
}

// ContainerRegistry holds container-scoped plugin types
type ContainerRegistry = Registry[ContainerContext]

// CoreRegistry holds core-scoped plugin types
type CoreRegistry = Registry[CoreContext]

// NewRegistry creates a new plugin registry.
func NewRegistry[C any](logger *zap.Logger) *Registry[C] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry[C]{
		logger:  logger.Named("plugin_registry"),
		plugins: make(map[string]PluginInfo[C]),
		order:   make([]string, 0),
	}
}

// Register adds a plugin to the registry.
// If a plugin with the same name already exists, the one with higher
// priority wins. If priorities are equal, the later registration wins.
func (r *Registry[C]) Register(info PluginInfo[C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("plugin %s: %w", info.Name, ErrSealed)
	}

	if info.Name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	if info.Factory == nil {
		return fmt.Errorf("plugin %s: factory cannot be nil", info.Name)
	}

	if info.Order == 0 {
		info.Order = DefaultOrder
	}

	existing, exists := r.plugins[info.Name]
	if exists {
		if info.Priority < existing.Priority {
			r.logger.Info("Plugin registration skipped",
				zap.String("plugin", info.Name),
				zap.Int("priority", info.Priority),
				zap.Int("existing_priority", existing.Priority))
			return nil
		}

		r.logger.Info("Plugin being overridden",
			zap.String("plugin", info.Name),
			zap.Int("from_priority", existing.Priority),
			zap.Int("to_priority", info.Priority))
	}

	r.plugins[info.Name] = info

	if !exists {
		r.order = append(r.order, info.Name)
	}

	r.logger.Debug("Plugin registered",
		zap.String("plugin", info.Name),
		zap.Int("priority", info.Priority),
		zap.Int("order", info.Order),
		zap.String("description", info.Description))

	return nil
}

// Get returns the plugin info for a given name, or nil if not found.
func (r *Registry[C]) Get(name string) *PluginInfo[C] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.plugins[name]
	if !ok {
		return nil
	}
	return &info
}

// List returns all registered plugins sorted by their creation order.
func (r *Registry[C]) List() []PluginInfo[C] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]PluginInfo[C], 0, len(r.plugins))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}

	// Sort by order (lower first); equal orders keep registration order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})

	return result
}

// CreateAll instantiates every registered plugin with ctx, in creation order.
// A plugin that fails to build (error, nil plugin or panic) is skipped; the
// others are still created. The returned error combines every failure.
func (r *Registry[C]) CreateAll(ctx C) ([]Plugin, error) {
	infos := r.List()
	result := make([]Plugin, 0, len(infos))

	var errs error
	for _, info := range infos {
		p, err := create(info, ctx)
		if err != nil {
			r.logger.Error("Failed to create plugin",
				zap.String("plugin", info.Name),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("failed to create plugin %s: %w", info.Name, err))
			continue
		}
		result = append(result, p)
	}

	return result, errs
}

func create[C any](info PluginInfo[C], ctx C) (p Plugin, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	p, err = info.Factory(ctx)
	if err == nil && p == nil {
		err = fmt.Errorf("factory returned no plugin")
	}
	return p, err
}

// Names returns the names of all registered plugins in registration order.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Seal rejects any further registration
func (r *Registry[C]) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether the registry is sealed
func (r *Registry[C]) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Clear removes all registered plugins. Useful for testing.
func (r *Registry[C]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = make(map[string]PluginInfo[C])
	r.order = make([]string, 0)
}

// FindByType returns the first plugin of type T
func FindByType[T Plugin](plugins []Plugin) (T, bool) {
	found, ok := lo.Find(plugins, func(p Plugin) bool {
		_, match := p.(T)
		return match
	})
	if !ok {
		var zero T
		return zero, false
	}
	return found.(T), true
}

// FindByName returns the plugin with the given name
func FindByName(plugins []Plugin, name string) (Plugin, bool) {
	return lo.Find(plugins, func(p Plugin) bool {
		return p.Name() == name
	})
}
