package mux

import (
	"context"
	"errors"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store the match.
var ctxKey = routeContextKey{}

// Vars returns the raw route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if m := CurrentMatch(r); m != nil {
		return m.Vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and a boolean
// indicating whether the variable exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if m := CurrentMatch(r); m != nil && m.Vars != nil {
		val, exists := m.Vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
// This only works when called inside the handler of the matched route
// because the matched route is stored in the request context.
func CurrentRoute(r *http.Request) *Route {
	if m := CurrentMatch(r); m != nil {
		return m.Route
	}
	return nil
}

// CurrentMatch returns the per-request match, with typed arguments already
// processed when the request went through Router.ServeHTTP.
func CurrentMatch(r *http.Request) *RouteMatch {
	m, _ := r.Context().Value(ctxKey).(*RouteMatch)
	return m
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetURLVars(r *http.Request, val map[string]string) *http.Request {
	m := &RouteMatch{Vars: val}
	if cur := CurrentMatch(r); cur != nil {
		m.Route = cur.Route
	}
	return setRouteContext(r, m)
}

// setRouteContext stores the match in the request context.
func setRouteContext(r *http.Request, match *RouteMatch) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, match)
	return r.WithContext(ctx)
}

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler. It can be used to wrap handlers with additional
// behavior such as logging, authentication, etc.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to implement the Middleware interface.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

// WalkFunc is the type of the function called for each route visited by
// Walk, in dispatch order.
type WalkFunc func(route *Route, router *Router) error

// RouteMapFunc can rewrite the substitution values of a reverse render.
// It receives a private copy and returns the values to use.
type RouteMapFunc func(route *Route, action string, subject Model, values map[string]string) map[string]string

// FallbackFunc is consulted when no indexed route can render a reverse
// lookup. An empty result means the fallback has no answer.
type FallbackFunc func(action string, subject any, opts *ReverseOptions) string

// PermissionFunc authorizes a processed match before dispatch. A non-nil
// error produces 403 Forbidden.
type PermissionFunc func(req *http.Request, match *RouteMatch, permissions []Permission) error

// ErrMethodMismatch is returned when the method in the request does not match
// the method defined against the route. Triggers 405 Method Not Allowed
// per RFC 9110 Section 15.5.6.
var ErrMethodMismatch = errors.New("method is not allowed")

// ErrNotFound is returned when no route match is found, and wrapped by
// NotFoundError when a model-typed segment cannot be resolved. Triggers
// 404 Not Found per RFC 9110 Section 15.5.5.
var ErrNotFound = errors.New("no matching route was found")

// SkipRoute is used as a return value from WalkFunc to continue with the
// next route.
var SkipRoute = errors.New("skip this route") //nolint:revive,staticcheck // sentinel, not an error condition
