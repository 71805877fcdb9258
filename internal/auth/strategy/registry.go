package strategy

import (
	"fmt"

	"passport-login/internal/auth"
)

// Registry holds all registered strategies and allows lookup by name.
// It performs no auth logic itself. Providers attach by registering
// here; the router never enumerates them statically.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers the given strategies by name.
// Strategy names must be unique.
func NewRegistry(list ...Strategy) *Registry {
	m := make(map[string]Strategy)
	for _, s := range list {
		m[s.Name()] = s
	}
	return &Registry{strategies: m}
}

// Register adds one more strategy, replacing any previous registration
// under the same name.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get returns the strategy by name or ErrProviderNotFound.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", auth.ErrProviderNotFound, name)
	}
	return s, nil
}
