// Package routecache provides mux.CacheStore implementations for route
// table snapshots.
//
//	rdb := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	store := routecache.NewRedis(rdb, routecache.WithPrefix("reroute"))
//	cached, err := router.LoadCached(ctx, store, "routes", version, build)
package routecache

import (
	"errors"

	"github.com/vitalvas/reroute/mux"
)

// ErrMiss is returned by Get when no blob is stored under the key.
var ErrMiss = errors.New("routecache: key not found")

var (
	_ mux.CacheStore = (*Memory)(nil)
	_ mux.CacheStore = (*Redis)(nil)
)
