package resolver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/reroute/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "records.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func seedRecords(t *testing.T, store *Store, records ...*Record) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, store.Create(context.Background(), record))
	}
}

func TestRecord(t *testing.T) {
	assert.Equal(t, "blue", (&Record{ID: 3, Slug: "blue"}).ModelID())
	assert.Equal(t, "3", (&Record{ID: 3}).ModelID())
	assert.Equal(t, "Widget", (&Record{Type: "Widget"}).ModelType())
}

func TestStoreFind(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	blue := &Record{Type: "Widget", Slug: "blue", Name: "Blue widget"}
	plain := &Record{Type: "Widget", Name: "Plain widget"}
	user := &Record{Type: "User", Slug: "blue", Name: "Blue user"}
	seedRecords(t, store, blue, plain, user)

	t.Run("by slug", func(t *testing.T) {
		got, err := store.Find(ctx, "Widget", "blue")
		require.NoError(t, err)
		assert.Equal(t, "Blue widget", got.Name)
	})

	t.Run("by id", func(t *testing.T) {
		got, err := store.Find(ctx, "Widget", plain.ModelID())
		require.NoError(t, err)
		assert.Equal(t, "Plain widget", got.Name)
	})

	t.Run("slugged records are not reachable by id", func(t *testing.T) {
		_, err := store.Find(ctx, "Widget", "1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("type partitions", func(t *testing.T) {
		got, err := store.Find(ctx, "User", "blue")
		require.NoError(t, err)
		assert.Equal(t, "Blue user", got.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Find(ctx, "Widget", "red")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGormLookupWithRouter(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedRecords(t, store,
		&Record{Type: "Widget", Slug: "blue", Name: "Blue widget"},
		&Record{Type: "Gadget", Slug: "tiny", Name: "Tiny gadget"},
	)

	r := mux.NewRouter()
	require.NoError(t, r.Types().Register("Widget", ""))
	require.NoError(t, r.Types().Register("Gadget", "Widget"))
	r.SetResolver(NewRegistry(r.Types()).
		Register("Widget", store.Lookup()).
		Register("Legacy", GormLookup(store.DB(), "Widget")))

	_, err := r.AddRoute("widget/{Widget widget}/{action}", mux.Options{
		mux.OptionClasses: []any{"Widget"},
	})
	require.NoError(t, err)
	_, err = r.AddRoute("gadget/{Gadget gadget}", nil)
	require.NoError(t, err)
	_, err = r.AddRoute("legacy/{Legacy item}", nil)
	require.NoError(t, err)

	t.Run("forward resolves records", func(t *testing.T) {
		var match mux.RouteMatch
		require.True(t, r.Match("widget/blue/edit", "GET", &match))
		require.NoError(t, match.Process(ctx))

		record, ok := match.Value("widget")
		require.True(t, ok)
		assert.Equal(t, "Blue widget", record.(*Record).Name)
	})

	t.Run("subtype through ancestor lookup", func(t *testing.T) {
		var match mux.RouteMatch
		require.True(t, r.Match("gadget/tiny", "GET", &match))
		require.NoError(t, match.Process(ctx))
		assert.Contains(t, match.ByClass("Widget"), "gadget")
	})

	t.Run("fixed type lookup", func(t *testing.T) {
		var match mux.RouteMatch
		require.True(t, r.Match("legacy/blue", "GET", &match))
		require.NoError(t, match.Process(ctx))
		assert.Equal(t, "Blue widget", match.Named()["item"].(*Record).Name)
	})

	t.Run("reverse renders records", func(t *testing.T) {
		record, err := store.Find(ctx, "Widget", "blue")
		require.NoError(t, err)

		u, err := r.GetRoute("view", record, nil)
		require.NoError(t, err)
		assert.Equal(t, "widget/blue/view", u)
	})

	t.Run("missing record", func(t *testing.T) {
		var match mux.RouteMatch
		require.True(t, r.Match("widget/red/edit", "GET", &match))
		assert.ErrorIs(t, match.Process(ctx), ErrNotFound)
	})
}
