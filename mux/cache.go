package mux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrStaleCache is returned by Restore when the snapshot was taken for a
// different version of the route definitions.
var ErrStaleCache = errors.New("mux: cached route table version mismatch")

// CacheStore persists route table snapshots.
type CacheStore interface {
	// Get returns the blob stored under key. A missing key is an error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores blob under key.
	Put(ctx context.Context, key string, blob []byte) error
}

type tableSnapshot struct {
	VersionID string            `msgpack:"version_id"`
	Prefix    string            `msgpack:"prefix"`
	Aliases   map[string]string `msgpack:"aliases"`
	Auto      int               `msgpack:"auto"`
	Routes    []routeSnapshot   `msgpack:"routes"`
}

type routeSnapshot struct {
	Pattern string         `msgpack:"pattern"`
	Options map[string]any `msgpack:"options"`
	Weight  float64        `msgpack:"weight"`
	Seq     int            `msgpack:"seq"`
}

var (
	snapshotEncoder, _ = zstd.NewWriter(nil)
	snapshotDecoder, _ = zstd.NewReader(nil)
)

// Snapshot serializes the route table, aliases and prefix under versionID.
// Handlers set directly on routes are not part of the snapshot; routes
// referencing a handler by name re-bind after Restore.
func (r *Router) Snapshot(versionID string) ([]byte, error) {
	snap := tableSnapshot{
		VersionID: versionID,
		Prefix:    r.Prefix(),
		Aliases:   r.Aliases(),
	}

	r.table.mu.Lock()
	snap.Auto = r.table.auto
	for _, route := range r.table.routes {
		snap.Routes = append(snap.Routes, routeSnapshot{
			Pattern: route.original,
			Options: route.options,
			Weight:  route.weight,
			Seq:     route.seq,
		})
	}
	r.table.mu.Unlock()

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("mux: encode snapshot: %w", err)
	}

	return snapshotEncoder.EncodeAll(data, nil), nil
}

// Restore replaces the route table with a snapshot taken for versionID.
// Restored routes are bound to this router, so they use its resolver,
// types, hooks and named handlers.
func (r *Router) Restore(blob []byte, versionID string) error {
	if r.table.Frozen() {
		return ErrFrozen
	}

	data, err := snapshotDecoder.DecodeAll(blob, nil)
	if err != nil {
		return fmt.Errorf("mux: decompress snapshot: %w", err)
	}

	var snap tableSnapshot
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("mux: decode snapshot: %w", err)
	}
	if snap.VersionID != versionID {
		return fmt.Errorf("%w: have %q, want %q", ErrStaleCache, snap.VersionID, versionID)
	}

	table := NewRouteTable()
	table.auto = snap.Auto
	index := NewReverseIndex()
	for _, rs := range snap.Routes {
		route, err := NewRoute(rs.Pattern, rs.Options)
		if err != nil {
			return fmt.Errorf("mux: restore route %q: %w", rs.Pattern, err)
		}
		route.router = r
		route.weight = rs.Weight
		route.seq = rs.Seq
		table.routes = append(table.routes, route)
		table.byPattern[route.original] = route
		table.byID[strings.ToLower(route.id)] = route
		if rs.Seq >= table.seq {
			table.seq = rs.Seq + 1
		}
		index.Add(route)
	}

	r.mu.Lock()
	r.table = table
	r.reverse = index
	r.prefix = snap.Prefix
	r.aliases = snap.Aliases
	if r.aliases == nil {
		r.aliases = make(map[string]string)
	}
	r.mu.Unlock()

	r.handlerCache.Clear()

	return nil
}

// LoadCached restores the route table from store when a snapshot for
// versionID exists. Otherwise it runs build and stores a fresh snapshot.
// Cache failures are logged and never fail the load; the boolean reports
// whether the table came from the cache.
func (r *Router) LoadCached(ctx context.Context, store CacheStore, key, versionID string, build func(*Router) error) (bool, error) {
	entry := r.logger.WithFields(log.Fields{"key": key, "version": versionID})

	if store != nil {
		blob, err := store.Get(ctx, key)
		if err == nil {
			if err = r.Restore(blob, versionID); err == nil {
				entry.Debug("route table restored from cache")
				return true, nil
			}
		}
		entry.WithError(err).Warn("route cache miss")
	}

	if err := build(r); err != nil {
		return false, err
	}

	if store == nil {
		return false, nil
	}

	blob, err := r.Snapshot(versionID)
	if err != nil {
		entry.WithError(err).Warn("cannot snapshot route table")
		return false, nil
	}
	if err := store.Put(ctx, key, blob); err != nil {
		entry.WithError(err).Warn("cannot store route table")
	}

	return false, nil
}
