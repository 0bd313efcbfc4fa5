package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVars(t *testing.T) {
	t.Run("returns nil for request without vars", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, Vars(r))
	})

	t.Run("returns vars from request context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = setRouteContext(r, &RouteMatch{Vars: map[string]string{"id": "42", "name": "test"}})
		result := Vars(r)
		require.NotNil(t, result)
		assert.Equal(t, "42", result["id"])
		assert.Equal(t, "test", result["name"])

		v, ok := VarGet(r, "id")
		assert.True(t, ok)
		assert.Equal(t, "42", v)
		_, ok = VarGet(r, "missing")
		assert.False(t, ok)
	})
}

func TestCurrentRoute(t *testing.T) {
	t.Run("returns nil for request without route", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, CurrentRoute(r))
		assert.Nil(t, CurrentMatch(r))
	})

	t.Run("returns route from request context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		route := &Route{}
		match := &RouteMatch{Route: route}
		r = setRouteContext(r, match)
		assert.Same(t, route, CurrentRoute(r))
		assert.Same(t, match, CurrentMatch(r))
	})
}

func TestSetURLVars(t *testing.T) {
	t.Run("sets vars on request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = SetURLVars(r, map[string]string{"key": "value"})
		result := Vars(r)
		require.NotNil(t, result)
		assert.Equal(t, "value", result["key"])
	})

	t.Run("overwrites existing vars", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = SetURLVars(r, map[string]string{"a": "1"})
		r = SetURLVars(r, map[string]string{"b": "2"})
		result := Vars(r)
		require.NotNil(t, result)
		assert.Empty(t, result["a"])
		assert.Equal(t, "2", result["b"])
	})

	t.Run("preserves existing route", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		route := &Route{}
		r = setRouteContext(r, &RouteMatch{Route: route, Vars: map[string]string{"a": "1"}})
		r = SetURLVars(r, map[string]string{"b": "2"})
		assert.Same(t, route, CurrentRoute(r))
		assert.Equal(t, "2", Vars(r)["b"])
	})
}

func TestMiddlewareFunc(t *testing.T) {
	t.Run("wraps handler", func(t *testing.T) {
		called := false
		mw := MiddlewareFunc(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				next.ServeHTTP(w, r)
			})
		})
		inner := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {})
		handler := mw.Middleware(inner)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(w, r)
		assert.True(t, called)
	})
}

// --- Benchmarks ---

func BenchmarkVars(b *testing.B) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = setRouteContext(r, &RouteMatch{Vars: map[string]string{"id": "42", "name": "test", "action": "view"}})
	b.ResetTimer()
	for b.Loop() {
		Vars(r)
	}
}

func BenchmarkSetURLVars(b *testing.B) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	vars := map[string]string{"id": "42", "name": "test"}
	b.ResetTimer()
	for b.Loop() {
		SetURLVars(r, vars)
	}
}

func TestErrors(t *testing.T) {
	t.Run("ErrMethodMismatch has correct message", func(t *testing.T) {
		assert.Equal(t, "method is not allowed", ErrMethodMismatch.Error())
	})

	t.Run("ErrNotFound has correct message", func(t *testing.T) {
		assert.Equal(t, "no matching route was found", ErrNotFound.Error())
	})

	t.Run("SkipRoute has correct message", func(t *testing.T) {
		assert.Equal(t, "skip this route", SkipRoute.Error())
	})

	t.Run("typed errors match their sentinels", func(t *testing.T) {
		assert.ErrorIs(t, &SyntaxError{Value: "x", Msg: "bad"}, ErrSyntax)
		assert.ErrorIs(t, &NotFoundError{Name: "w", Type: "Widget", Value: "1"}, ErrNotFound)
		assert.ErrorIs(t, &UnsupportedError{Value: 1}, ErrUnsupported)
		assert.NotErrorIs(t, &SyntaxError{}, ErrNotFound)
	})

	t.Run("messages", func(t *testing.T) {
		assert.Equal(t, `mux: bad "x" in pattern "p"`, (&SyntaxError{Pattern: "p", Value: "x", Msg: "bad"}).Error())
		assert.Equal(t, `mux: invalid integer format "abc"`, (&SyntaxError{Value: "abc", Msg: "invalid integer format"}).Error())
		assert.Equal(t, `mux: w (Widget) model not found with value "1": no such record`,
			(&NotFoundError{Name: "w", Type: "Widget", Value: "1", Err: errNoRecord}).Error())
		assert.Equal(t, "mux: unsupported reverse route subject of type int", (&UnsupportedError{Value: 1}).Error())
	})
}
