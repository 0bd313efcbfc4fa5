package mux

import (
	"net/http"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterDiagnostics(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	r := newTestRouter(t).SetLogger(logger)
	mustAddRoute(t, r, "GET:widget/{Widget widget}", Options{
		OptionClasses: []any{"Widget"},
		OptionActions: []any{"view"},
	})

	t.Run("forward miss", func(t *testing.T) {
		hook.Reset()
		var match RouteMatch
		assert.False(t, r.Match("nothing/here", http.MethodGet, &match))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, log.DebugLevel, entry.Level)
		assert.Equal(t, "no route found", entry.Message)
		assert.Equal(t, "nothing/here", entry.Data["path"])
	})

	t.Run("method mismatch", func(t *testing.T) {
		hook.Reset()
		var match RouteMatch
		assert.False(t, r.Match("widget/1", http.MethodDelete, &match))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "method not allowed", entry.Message)
		assert.Equal(t, http.MethodDelete, entry.Data["method"])
	})

	t.Run("matches are silent unless debugging", func(t *testing.T) {
		hook.Reset()
		var match RouteMatch
		require.True(t, r.Match("widget/1", http.MethodGet, &match))
		assert.Empty(t, hook.AllEntries())

		r.SetDebug(true)
		defer r.SetDebug(false)

		require.True(t, r.Match("widget/1", http.MethodGet, &match))
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "route matched", entry.Message)
		assert.Equal(t, "widget/{widget}", entry.Data["route"])
	})

	t.Run("reverse miss", func(t *testing.T) {
		hook.Reset()
		u, err := r.GetRoute("delete", "Widget", nil)
		require.NoError(t, err)
		assert.Empty(t, u)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, log.WarnLevel, entry.Level)
		assert.Equal(t, "no reverse route found", entry.Message)
		assert.Equal(t, "delete", entry.Data["action"])
	})
}
