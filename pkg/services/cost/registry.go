package cost

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Registry maps provider identifiers to factories. Identifiers are matched
// case-insensitively.
type Registry interface {
	// Register adds a new provider factory
	Register(name string, factory Factory) error
	// Create instantiates the provider registered under name using cfg
	Create(name string, cfg domain.ProviderConfig) (Provider, error)
	IsRegistered(name string) bool
	// List returns the registered identifiers in lexical order
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// NormalizeName trims and lower-cases a provider identifier.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *registry) Register(name string, factory Factory) error {
	key := NormalizeName(name)
	if key == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider %q is already registered", key)
	}

	r.factories[key] = factory
	return nil
}

func (r *registry) Create(name string, cfg domain.ProviderConfig) (Provider, error) {
	key := NormalizeName(name)

	r.mu.RLock()
	factory, exists := r.factories[key]
	r.mu.RUnlock()

	if !exists {
		return nil, &domain.UnsupportedProviderError{Provider: name}
	}

	return factory(cfg.Clone())
}

func (r *registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[NormalizeName(name)]
	return exists
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
