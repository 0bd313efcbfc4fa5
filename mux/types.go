package mux

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// RootType is the implicit ancestor of every model type.
const RootType = "Model"

// Model is a domain object that can appear in a path segment.
type Model interface {
	// ModelID returns the identifier used in URLs.
	ModelID() string
	// ModelType returns the registered type name of the object.
	ModelType() string
}

// Resolver turns a model type name and a raw path token into a Model.
type Resolver interface {
	Resolve(ctx context.Context, typeName, raw string) (Model, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, typeName, raw string) (Model, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, typeName, raw string) (Model, error) {
	return f(ctx, typeName, raw)
}

// DerivedClasser is implemented by subjects that supply values for path
// variables typed with classes other than their own during reverse
// dispatch. Keys are type names, values are substituted verbatim.
type DerivedClasser interface {
	DerivedClasses() map[string]string
}

// TypeTable is the static model type hierarchy. Types are registered once
// at startup with their parent; RootType terminates every chain.
type TypeTable struct {
	mu      sync.RWMutex
	parents map[string]string
	names   map[string]string
}

// NewTypeTable returns a table containing only RootType.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		parents: make(map[string]string),
		names:   map[string]string{strings.ToLower(RootType): RootType},
	}
}

// Register adds a type with its parent. An empty parent means RootType.
// Registering a type again replaces its parent. Cycles are rejected.
func (t *TypeTable) Register(name, parent string) error {
	if name == "" {
		return fmt.Errorf("mux: empty type name")
	}
	if parent == "" {
		parent = RootType
	}
	key, parentKey := strings.ToLower(name), strings.ToLower(parent)
	if key == strings.ToLower(RootType) {
		return fmt.Errorf("mux: type %q is reserved", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for p := parentKey; p != ""; p = t.parents[p] {
		if p == key {
			return fmt.Errorf("mux: type %q cannot inherit from %q: cycle", name, parent)
		}
	}

	if _, ok := t.names[parentKey]; !ok {
		t.names[parentKey] = parent
		if parentKey != strings.ToLower(RootType) {
			t.parents[parentKey] = strings.ToLower(RootType)
		}
	}
	t.names[key] = name
	t.parents[key] = parentKey
	return nil
}

// Canonical returns the registered spelling of name, or name itself.
func (t *TypeTable) Canonical(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.names[strings.ToLower(name)]; ok {
		return n
	}
	return name
}

// Hierarchy returns the lower-cased chain from name up to RootType.
// Unknown names are treated as direct children of RootType.
func (t *TypeTable) Hierarchy(name string) []string {
	root := strings.ToLower(RootType)
	key := strings.ToLower(name)
	if key == "" {
		return []string{root}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	chain := []string{key}
	for p, ok := t.parents[key]; ok && p != ""; p, ok = t.parents[p] {
		chain = append(chain, p)
		if p == root {
			return chain
		}
	}
	if chain[len(chain)-1] != root {
		chain = append(chain, root)
	}
	return chain
}

// IsA reports whether name equals ancestor or inherits from it.
func (t *TypeTable) IsA(name, ancestor string) bool {
	return matchInArray(t.Hierarchy(name), strings.ToLower(ancestor))
}
