package oauth

import (
	"errors"
	"fmt"
	"sort"
)

// Registry holds the known provider adapters keyed by name.
// The zero value is not usable; construct with NewRegistry.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry preloaded with the built-in Google and
// Apple adapters. The options are forwarded to each built-in adapter.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(NewGoogleProvider(opts...))
	r.Register(NewAppleProvider(opts...))
	return r
}

// Register adds or replaces a provider adapter under its own name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the adapter registered under name, or ErrUnsupportedProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, errors.Join(ErrUnsupportedProvider, fmt.Errorf("provider %q", name))
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
