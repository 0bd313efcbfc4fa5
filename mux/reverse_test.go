package mux

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseIndex(t *testing.T) {
	t.Run("keys are case-insensitive", func(t *testing.T) {
		x := NewReverseIndex()
		route, err := NewRoute("widget/{id}/{action}", Options{
			OptionClasses: []any{"Widget"},
			OptionActions: []any{"Edit", "view"},
		})
		require.NoError(t, err)
		x.Add(route)

		assert.Equal(t, []*Route{route}, x.Lookup("WIDGET", "edit"))
		assert.Equal(t, []*Route{route}, x.Lookup("widget", "VIEW"))
		assert.Nil(t, x.Lookup("widget", "delete"))
		assert.Equal(t, []string{"widget"}, x.Classes())
	})

	t.Run("missing action binds the wildcard", func(t *testing.T) {
		x := NewReverseIndex()
		route, err := NewRoute("widget/{id}", Options{OptionClasses: "Widget"})
		require.NoError(t, err)
		x.Add(route)
		assert.Equal(t, []*Route{route}, x.Lookup("widget", Wildcard))
	})

	t.Run("class_actions map", func(t *testing.T) {
		x := NewReverseIndex()
		route, err := NewRoute("{action}/{User user}", Options{
			OptionClassActions: map[string]any{"User": []any{"view"}, "*": "list"},
		})
		require.NoError(t, err)
		x.Add(route)
		assert.Len(t, x.Lookup("user", "view"), 1)
		assert.Len(t, x.Lookup("*", "list"), 1)
	})

	t.Run("remove drops every entry", func(t *testing.T) {
		x := NewReverseIndex()
		a, _ := NewRoute("a", Options{OptionClasses: "Widget", OptionAction: "edit"})
		b, _ := NewRoute("b", Options{OptionClasses: "Widget", OptionAction: "edit"})
		x.Add(a)
		x.Add(b)
		x.Remove(a)
		assert.Equal(t, []*Route{b}, x.Lookup("widget", "edit"))
		x.Remove(b)
		assert.Empty(t, x.Classes())
	})

	t.Run("candidates order", func(t *testing.T) {
		x := NewReverseIndex()
		exact, _ := NewRoute("exact", Options{OptionClasses: "Gadget", OptionAction: "edit"})
		anyAction, _ := NewRoute("any-action", Options{OptionClasses: "Gadget"})
		parent, _ := NewRoute("parent", Options{OptionClasses: "Widget", OptionAction: "edit"})
		anyClass, _ := NewRoute("any-class", Options{OptionClasses: "*", OptionAction: "edit"})
		for _, r := range []*Route{anyClass, parent, anyAction, exact} {
			x.Add(r)
		}

		got := x.Candidates([]string{"gadget", "widget", "model"}, "edit")
		assert.Equal(t, []string{"exact", "any-action", "parent", "any-class"}, routeIDs(got))
	})
}

func TestReverseOptionsClone(t *testing.T) {
	t.Run("nil options", func(t *testing.T) {
		var o *ReverseOptions
		c := o.clone()
		require.NotNil(t, c)
		assert.NotNil(t, c.Values)
		assert.NotNil(t, c.DerivedClasses)
	})

	t.Run("maps are copied", func(t *testing.T) {
		o := &ReverseOptions{
			Query:  url.Values{"q": {"1"}},
			Values: map[string]any{"a": 1},
		}
		c := o.clone()
		c.Values["b"] = 2
		assert.NotContains(t, o.Values, "b")
		assert.Equal(t, o.Query, c.Query)
	})
}
