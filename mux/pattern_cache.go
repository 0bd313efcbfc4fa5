package mux

import "sync"

// patternCache holds compiled patterns by their source text. A
// CompiledPattern is immutable, so routes registered with the same
// pattern (including routes restored from a snapshot) share one. The
// number of entries is bounded by the number of distinct patterns.
var patternCache sync.Map // map[string]*CompiledPattern

// loadPattern returns a previously compiled pattern.
func loadPattern(pattern string) (*CompiledPattern, bool) {
	v, ok := patternCache.Load(pattern)
	if !ok {
		return nil, false
	}
	return v.(*CompiledPattern), true
}

// storePattern caches p unless another goroutine stored the same pattern
// first, and returns the cached value.
func storePattern(pattern string, p *CompiledPattern) *CompiledPattern {
	actual, _ := patternCache.LoadOrStore(pattern, p)
	return actual.(*CompiledPattern)
}
