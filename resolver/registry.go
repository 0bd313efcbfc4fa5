// Package resolver maps model type names to lookup functions and
// implements mux.Resolver on top of them.
//
//	reg := resolver.NewRegistry(router.Types())
//	reg.Register("Widget", resolver.GormLookup(db, "Widget"))
//	router.SetResolver(reg)
//
// Types without their own lookup fall back to the lookup of the nearest
// ancestor in the router type hierarchy.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vitalvas/reroute/mux"
)

var (
	// ErrNotFound is returned by lookups when no object has the given token.
	ErrNotFound = errors.New("resolver: object not found")

	// ErrUnknownType is returned when no lookup serves the type or any of
	// its ancestors.
	ErrUnknownType = errors.New("resolver: unknown type")
)

// LookupFunc loads the object of a type identified by a raw path token.
type LookupFunc func(ctx context.Context, typeName, raw string) (mux.Model, error)

// Registry is a mux.Resolver dispatching on type name.
type Registry struct {
	mu      sync.RWMutex
	types   *mux.TypeTable
	lookups map[string]LookupFunc
}

var _ mux.Resolver = (*Registry)(nil)

// NewRegistry returns an empty registry. types supplies the hierarchy for
// ancestor fallback; nil disables it.
func NewRegistry(types *mux.TypeTable) *Registry {
	return &Registry{
		types:   types,
		lookups: make(map[string]LookupFunc),
	}
}

// Register sets the lookup of a type. Type names are case-insensitive.
func (r *Registry) Register(typeName string, fn LookupFunc) *Registry {
	r.mu.Lock()
	r.lookups[strings.ToLower(typeName)] = fn
	r.mu.Unlock()
	return r
}

// Has reports whether typeName has a lookup of its own.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lookups[strings.ToLower(typeName)]
	return ok
}

// Resolve implements mux.Resolver.
func (r *Registry) Resolve(ctx context.Context, typeName, raw string) (mux.Model, error) {
	fn := r.lookup(typeName)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	model, err := fn(ctx, typeName, raw)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, typeName, raw)
	}
	return model, nil
}

func (r *Registry) lookup(typeName string) LookupFunc {
	chain := []string{strings.ToLower(typeName)}
	if r.types != nil {
		chain = r.types.Hierarchy(typeName)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range chain {
		if fn, ok := r.lookups[name]; ok {
			return fn
		}
	}
	return nil
}
