package mux

import (
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// requestPath converts a request URL path to the form routes are matched
// against: cleaned, without the leading slash.
func requestPath(p string) string {
	return strings.TrimPrefix(cleanPath(p), "/")
}

// checkDuplicateVars returns an error if a variable name is declared twice.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("mux: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}

// matchInArray returns true if the given string value is in the array.
func matchInArray(arr []string, value string) bool {
	for _, v := range arr {
		if v == value {
			return true
		}
	}
	return false
}

// methodsForPath returns the sorted, de-duplicated methods of every route
// whose pattern matches path, regardless of the request method.
func methodsForPath(router *Router, path string) []string {
	path = router.forwardPath(path)

	var methods []string
	for _, route := range router.table.Routes() {
		if !route.pattern.MatchString(path) {
			continue
		}
		for _, m := range route.pattern.methods {
			if !matchInArray(methods, m) {
				methods = append(methods, m)
			}
		}
	}
	sort.Strings(methods)
	return methods
}

// allowedMethods returns the methods that match the request path but not
// the request method. Used to populate the Allow header field required by
// RFC 9110 Section 15.5.6 on 405 responses, sorted alphabetically.
func allowedMethods(router *Router, req *http.Request) []string {
	methods := methodsForPath(router, requestPath(req.URL.Path))
	return subtractSlice(methods, []string{req.Method})
}

// subtractSlice returns elements in a that are not in b.
func subtractSlice(a, b []string) []string {
	result := make([]string, 0, len(a))
	for _, s := range a {
		if !matchInArray(b, s) {
			result = append(result, s)
		}
	}
	return result
}

// methodNotAllowed replies to the request with an HTTP 405 method not allowed.
// The Allow header is set by Router.ServeHTTP before this handler runs.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// forbidden replies to the request with an HTTP 403.
func forbidden(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

var (
	defaultNotFoundHandler         = http.NotFoundHandler()
	defaultMethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	defaultForbiddenHandler        = http.HandlerFunc(forbidden)
)
