package mux

import (
	"context"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testModel struct {
	id  string
	typ string
}

func (m testModel) ModelID() string   { return m.id }
func (m testModel) ModelType() string { return m.typ }

type derivedModel struct {
	testModel
	derived map[string]string
}

func (m derivedModel) DerivedClasses() map[string]string { return m.derived }

var errNoRecord = errors.New("no such record")

// testResolver resolves "<type>:<id>" keys from a fixed set of models.
func testResolver(models ...Model) Resolver {
	byKey := make(map[string]Model, len(models))
	for _, m := range models {
		byKey[m.ModelType()+":"+m.ModelID()] = m
	}
	return ResolverFunc(func(_ context.Context, typeName, raw string) (Model, error) {
		if m, ok := byKey[typeName+":"+raw]; ok {
			return m, nil
		}
		return nil, errNoRecord
	})
}

// quietLogger discards output but keeps every level enabled.
func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	l.SetLevel(log.DebugLevel)
	return l
}

// newTestRouter returns a router with the Widget > Gadget hierarchy and a
// User type registered.
func newTestRouter(t testing.TB) *Router {
	t.Helper()

	types := NewTypeTable()
	require.NoError(t, types.Register("Widget", ""))
	require.NoError(t, types.Register("Gadget", "Widget"))
	require.NoError(t, types.Register("User", ""))

	return NewRouter().SetTypes(types).SetLogger(quietLogger())
}

func mustAddRoute(t testing.TB, r *Router, pattern string, options Options) *Route {
	t.Helper()
	route, err := r.AddRoute(pattern, options)
	require.NoError(t, err)
	return route
}
