package build

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine turns a resolved plan into files on disk.
type Engine interface {
	Name() string
	Execute(ctx context.Context, plan *BuildPlan) (*BuildResult, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Engine{}
)

// Register makes an engine available to plans by name. Engine packages
// call it from init.
func Register(name string, constructor func() Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("engine %q registered twice", name))
	}
	registry[name] = constructor
}

// Get returns a new instance of the named engine.
func Get(name string) (Engine, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(All(), ", "))
	}
	return ctor(), nil
}

// All lists the registered engine names in order.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
