package mux

import (
	"net/url"
	"strings"
	"sync"
)

// Wildcard matches any class or any action in the reverse index.
const Wildcard = "*"

// ReverseOptions carries the extra inputs of a reverse lookup.
type ReverseOptions struct {
	// Query is appended to the rendered path.
	Query url.Values
	// Values supply placeholders that neither the action nor the subject
	// fill. Strings, numbers, booleans and Models are accepted.
	Values map[string]any
	// DerivedClasses map type names to ids for placeholders typed with a
	// class other than the subject's own.
	DerivedClasses map[string]string
	// Current is the match of the request being served. Its named values
	// fill placeholders that nothing else provides.
	Current *RouteMatch
}

// clone returns a copy whose maps can be extended without touching the
// caller's options.
func (o *ReverseOptions) clone() *ReverseOptions {
	out := &ReverseOptions{
		Values:         make(map[string]any),
		DerivedClasses: make(map[string]string),
	}
	if o == nil {
		return out
	}
	out.Query = o.Query
	out.Current = o.Current
	for k, v := range o.Values {
		out.Values[k] = v
	}
	for k, v := range o.DerivedClasses {
		out.DerivedClasses[k] = v
	}
	return out
}

// ReverseIndex maps lower-cased class names and actions to the routes
// that can render a URL for them. Entries keep registration order.
type ReverseIndex struct {
	mu      sync.RWMutex
	entries map[string]map[string][]*Route
}

// NewReverseIndex returns an empty index.
func NewReverseIndex() *ReverseIndex {
	return &ReverseIndex{entries: make(map[string]map[string][]*Route)}
}

// Add indexes route under every (class, action) pair it declares.
func (x *ReverseIndex) Add(route *Route) {
	if len(route.classActions) == 0 {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for class, actions := range route.classActions {
		ck := strings.ToLower(class)
		byAction, ok := x.entries[ck]
		if !ok {
			byAction = make(map[string][]*Route)
			x.entries[ck] = byAction
		}
		for _, action := range actions {
			ak := strings.ToLower(action)
			byAction[ak] = append(byAction[ak], route)
		}
	}
}

// Remove drops every entry of route.
func (x *ReverseIndex) Remove(route *Route) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for ck, byAction := range x.entries {
		for ak, routes := range byAction {
			kept := routes[:0]
			for _, r := range routes {
				if r != route {
					kept = append(kept, r)
				}
			}
			if len(kept) == 0 {
				delete(byAction, ak)
			} else {
				byAction[ak] = kept
			}
		}
		if len(byAction) == 0 {
			delete(x.entries, ck)
		}
	}
}

// Lookup returns the routes bound to exactly (class, action). Wildcard
// expansion is left to the caller.
func (x *ReverseIndex) Lookup(class, action string) []*Route {
	x.mu.RLock()
	defer x.mu.RUnlock()

	routes := x.entries[strings.ToLower(class)][strings.ToLower(action)]
	if len(routes) == 0 {
		return nil
	}
	return append([]*Route(nil), routes...)
}

// Classes returns the indexed class keys.
func (x *ReverseIndex) Classes() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]string, 0, len(x.entries))
	for k := range x.entries {
		out = append(out, k)
	}
	return out
}

// Candidates returns the routes to try for a reverse lookup of action on
// the given classes, in order: each class with the exact action then the
// wildcard action, and finally the wildcard class. Duplicates are dropped.
func (x *ReverseIndex) Candidates(classes []string, action string) []*Route {
	keys := make([]string, 0, len(classes)+1)
	for _, c := range classes {
		c = strings.ToLower(c)
		if !matchInArray(keys, c) {
			keys = append(keys, c)
		}
	}
	if !matchInArray(keys, Wildcard) {
		keys = append(keys, Wildcard)
	}

	actions := []string{action}
	if action != Wildcard {
		actions = append(actions, Wildcard)
	}

	var (
		out  []*Route
		seen = make(map[*Route]bool)
	)
	for _, class := range keys {
		for _, act := range actions {
			for _, r := range x.Lookup(class, act) {
				if !seen[r] {
					seen[r] = true
					out = append(out, r)
				}
			}
		}
	}
	return out
}
