package brain

import (
	"fmt"
	"sort"
	"sync"
)

// Config carries the provider-agnostic settings a backend factory may use.
// Zero values fall back to per-backend defaults; credentials default to the
// provider SDK's environment lookup.
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// Factory constructs a Brain from a Config.
type Factory func(cfg Config) (Brain, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a backend factory under a name. Backend packages call this
// from init so importing a backend makes it selectable. Re-registering a
// name replaces the previous factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New constructs the named backend, failing for names never registered.
func New(name string, cfg Config) (Brain, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown brain backend %q (available: %v)", name, Backends())
	}
	return factory(cfg)
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
