package classifier

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrExists   = errors.New("classifier already registered")
	ErrNotFound = errors.New("classifier not found")
)

type Factory func() (Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a named classifier factory. Names must be unique.
func Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("classifier name is required")
	}
	if factory == nil {
		return fmt.Errorf("classifier factory is required for %s", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	registry[name] = factory
	return nil
}

// Resolve constructs the classifier registered under name.
func Resolve(name string) (Classifier, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return factory()
}

// Names lists registered classifier names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetForTest clears the registry. Test helper only.
func ResetForTest() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = map[string]Factory{}
}
