package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Name        string
	Description string
}

// Factory creates a publisher from its configuration.
type Factory func(ctx context.Context, cfg Config) (Publisher, error)

type registeredProvider struct {
	info    ProviderInfo
	factory Factory
}

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]registeredProvider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]registeredProvider)}
}

// Register adds a provider.
func (r *Registry) Register(info ProviderInfo, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[info.Name]; exists {
		return fmt.Errorf("provider %s already registered", info.Name)
	}
	r.providers[info.Name] = registeredProvider{info: info, factory: factory}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (ProviderInfo, Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rp, ok := r.providers[name]
	if !ok {
		return ProviderInfo{}, nil, false
	}
	return rp.info, rp.factory, true
}

// List returns all providers sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, rp := range r.providers {
		infos = append(infos, rp.info)
	}
	slices.SortFunc(infos, func(a, b ProviderInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos
}

// Create builds the publisher registered under name.
func (r *Registry) Create(ctx context.Context, name string, cfg Config) (Publisher, error) {
	info, factory, ok := r.Get(name)
	if !ok {
		names := make([]string, 0)
		for _, i := range r.List() {
			names = append(names, i.Name)
		}
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(names, ", "))
	}

	pub, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create provider %s: %w", info.Name, err)
	}
	return pub, nil
}
