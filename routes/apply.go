package routes

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/vitalvas/reroute/mux"
)

// Fingerprint returns a stable identifier of the file content. Equal
// definitions yield equal fingerprints regardless of the source format,
// so the value serves as the version id of cached route tables.
func (f *File) Fingerprint() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("routes: fingerprint: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// Apply registers the file on r: prefix, model types, routes in file
// order, then aliases.
func (f *File) Apply(r *mux.Router) error {
	if f.Prefix != "" {
		r.SetPrefix(f.Prefix)
	}

	types := r.Types()
	for _, name := range sortedKeys(f.Types) {
		if err := types.Register(name, f.Types[name]); err != nil {
			return fmt.Errorf("routes: type %q: %w", name, err)
		}
	}

	for i, def := range f.Routes {
		if _, err := r.AddRoute(def.Pattern, mux.Options(def.Options).Clone()); err != nil {
			return fmt.Errorf("routes: route %d (%q): %w", i, def.Pattern, err)
		}
	}

	for _, from := range sortedKeys(f.Aliases) {
		if err := r.AddAlias(from, f.Aliases[from]); err != nil {
			return fmt.Errorf("routes: alias %q: %w", from, err)
		}
	}

	return nil
}

// Builder returns a build function for mux.Router.LoadCached.
func (f *File) Builder() func(*mux.Router) error {
	return f.Apply
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
