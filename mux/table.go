package mux

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteTable is the weight-ordered collection of routes. Registration is
// serialized by a mutex; readers use a sorted snapshot that is rebuilt
// lazily after every change.
type RouteTable struct {
	mu        sync.Mutex
	routes    []*Route
	byID      map[string]*Route
	byPattern map[string]*Route
	seq       int
	auto      int
	frozen    bool
	sorted    atomic.Pointer[[]*Route]
}

// NewRouteTable returns an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{
		byID:      make(map[string]*Route),
		byPattern: make(map[string]*Route),
	}
}

// Add registers a route. Routes without a "weight" option get a counter
// of such routes divided by 1000, so they are tried in registration order.
// Routes with an explicit weight do not advance the counter. A route with the same pattern as an earlier one replaces it; the
// replaced route is returned.
func (t *RouteTable) Add(route *Route) (*Route, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return nil, ErrFrozen
	}

	route.seq = t.seq
	t.seq++
	if !route.options.Has(OptionWeight) {
		route.weight = float64(t.auto) / 1000
		t.auto++
	}

	replaced := t.byPattern[route.original]
	if replaced != nil {
		for i, r := range t.routes {
			if r == replaced {
				t.routes[i] = route
				break
			}
		}
		if key := strings.ToLower(replaced.id); t.byID[key] == replaced {
			delete(t.byID, key)
		}
	} else {
		t.routes = append(t.routes, route)
	}

	t.byPattern[route.original] = route
	t.byID[strings.ToLower(route.id)] = route
	t.sorted.Store(nil)

	return replaced, nil
}

// Routes returns the routes in dispatch order: ascending weight, then
// registration order. The slice is shared and must not be modified.
func (t *RouteTable) Routes() []*Route {
	if p := t.sorted.Load(); p != nil {
		return *p
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if p := t.sorted.Load(); p != nil {
		return *p
	}

	routes := make([]*Route, len(t.routes))
	copy(routes, t.routes)
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].weight < routes[j].weight
	})
	t.sorted.Store(&routes)

	return routes
}

// Get returns a route by id. Ids are case-insensitive.
func (t *RouteTable) Get(id string) (*Route, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byID[strings.ToLower(id)]
	return r, ok
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.routes)
}

// Freeze sorts the table and rejects further registration.
func (t *RouteTable) Freeze() {
	t.Routes()
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (t *RouteTable) Frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frozen
}
