package mux

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchPath(t *testing.T, r *Router, path string) *RouteMatch {
	t.Helper()
	var m RouteMatch
	require.True(t, r.Match(path, http.MethodGet, &m), "no route for %q", path)
	return &m
}

func TestRouteMatchProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("optional integer present", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "{action}/(\\{ID integer\\})", nil)

		m := matchPath(t, r, "bar/5")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, "bar", m.Named()["action"])
		assert.Equal(t, int64(5), m.Named()["ID"])
		assert.Equal(t, "bar", m.Named()["uri0"])
		assert.Equal(t, int64(5), m.Named()["uri1"])
	})

	t.Run("optional integer absent", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "{action}/(\\{ID integer\\})", nil)

		m := matchPath(t, r, "bar")
		require.NoError(t, m.Process(ctx))
		v, ok := m.Value("ID")
		assert.True(t, ok)
		assert.Nil(t, v)
		assert.Nil(t, m.Named()["uri1"])
	})

	t.Run("integer conversion", func(t *testing.T) {
		tests := []struct {
			path  string
			want  int64
			fails bool
		}{
			{path: "n/5", want: 5},
			{path: "n/-5", want: -5},
			{path: "n/abc", fails: true},
		}

		r := newTestRouter(t)
		mustAddRoute(t, r, "n/{integer id}", nil)

		for _, tt := range tests {
			t.Run(tt.path, func(t *testing.T) {
				m := matchPath(t, r, tt.path)
				err := m.Process(ctx)
				if tt.fails {
					assert.ErrorIs(t, err, ErrSyntax)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, m.Named()["id"])
			})
		}
	})

	t.Run("processing is memoized", func(t *testing.T) {
		calls := 0
		r := newTestRouter(t).SetResolver(ResolverFunc(func(_ context.Context, typeName, raw string) (Model, error) {
			calls++
			return testModel{id: raw, typ: typeName}, nil
		}))
		mustAddRoute(t, r, "w/{Widget widget}", nil)

		m := matchPath(t, r, "w/42")
		require.NoError(t, m.Process(ctx))
		require.NoError(t, m.Process(ctx))
		assert.True(t, m.Processed())
		assert.Equal(t, 1, calls)
	})

	t.Run("errors are memoized", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "n/{int id}", nil)
		m := matchPath(t, r, "n/x")
		first := m.Process(ctx)
		require.Error(t, first)
		assert.Same(t, first, m.Process(ctx))
	})

	t.Run("models fill every ancestor class", func(t *testing.T) {
		gadget := testModel{id: "7", typ: "Gadget"}
		r := newTestRouter(t).SetResolver(testResolver(gadget))
		mustAddRoute(t, r, "g/{Gadget item}", nil)

		m := matchPath(t, r, "g/7")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, gadget, m.Named()["item"])
		for _, class := range []string{"gadget", "Widget", "MODEL"} {
			assert.Equal(t, map[string]Model{"item": gadget}, m.ByClass(class), class)
		}
		assert.Nil(t, m.ByClass("user"))
	})

	t.Run("type names are canonicalized before resolving", func(t *testing.T) {
		var got string
		r := newTestRouter(t).SetResolver(ResolverFunc(func(_ context.Context, typeName, raw string) (Model, error) {
			got = typeName
			return testModel{id: raw, typ: typeName}, nil
		}))
		mustAddRoute(t, r, "g/{gadget item}", nil)

		m := matchPath(t, r, "g/1")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, "Gadget", got)
	})

	t.Run("unresolvable model", func(t *testing.T) {
		r := newTestRouter(t).SetResolver(testResolver())
		mustAddRoute(t, r, "w/{Widget widget}", nil)

		m := matchPath(t, r, "w/404")
		err := m.Process(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, errNoRecord))

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "widget", nf.Name)
		assert.Equal(t, "Widget", nf.Type)
		assert.Equal(t, "404", nf.Value)
	})

	t.Run("model without resolver", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "w/{Widget widget}", nil)
		m := matchPath(t, r, "w/1")
		assert.ErrorIs(t, m.Process(ctx), ErrNotFound)
	})

	t.Run("resolver returning nil", func(t *testing.T) {
		r := newTestRouter(t).SetResolver(ResolverFunc(func(context.Context, string, string) (Model, error) {
			return nil, nil
		}))
		mustAddRoute(t, r, "w/{Widget widget}", nil)
		m := matchPath(t, r, "w/1")
		assert.ErrorIs(t, m.Process(ctx), ErrNotFound)
	})

	t.Run("lists", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "l/{list a}/{comma_list b}/{dash_list c}", nil)
		m := matchPath(t, r, "l/x;y/1,2/p-q")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, []string{"x", "y"}, m.Named()["a"])
		assert.Equal(t, []string{"1", "2"}, m.Named()["b"])
		assert.Equal(t, []string{"p", "q"}, m.Named()["c"])
	})

	t.Run("option segments overlay route options", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "o/{option format}", Options{"format": "html", "layout": "wide"})
		m := matchPath(t, r, "o/json")
		require.NoError(t, m.Process(ctx))

		v, ok := m.Option("format")
		assert.True(t, ok)
		assert.Equal(t, "json", v)
		v, ok = m.Option("layout")
		assert.True(t, ok)
		assert.Equal(t, "wide", v)
		_, ok = m.Option("missing")
		assert.False(t, ok)
	})

	t.Run("positional arguments", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "a/{int x}/({y})", Options{OptionArguments: []any{1, "const", "2", 9}})
		m := matchPath(t, r, "a/3")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, []any{int64(3), "const", "", ""}, m.Args())
	})

	t.Run("extra wildcard segments stay raw", func(t *testing.T) {
		r := newTestRouter(t)
		mustAddRoute(t, r, "files/*", Options{OptionArguments: []any{2}})
		m := matchPath(t, r, "files/a/b")
		require.NoError(t, m.Process(ctx))
		assert.Equal(t, []any{"b"}, m.Args())
		assert.Equal(t, "a", m.Named()["uri1"])
	})

	t.Run("match without route", func(t *testing.T) {
		var m RouteMatch
		assert.ErrorIs(t, m.Process(ctx), ErrNotFound)
	})
}

func BenchmarkRouteMatchProcess(b *testing.B) {
	r := newTestRouter(b)
	mustAddRoute(b, r, "{action}/({integer ID})", nil)
	ctx := context.Background()
	for b.Loop() {
		var m RouteMatch
		r.Match("bar/5", http.MethodGet, &m)
		_ = m.Process(ctx)
	}
}
