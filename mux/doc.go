// Package mux implements a bidirectional URL router: requests are matched
// to routes compiled from a compact pattern language, and URLs are rendered
// back from an action name and an optional subject object.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//
// # Router
//
// Create a router, register routes, then serve:
//
//	r := mux.NewRouter()
//	r.HandleFunc("GET:articles/{int page}", ArticlesHandler, nil)
//	r.HandleFunc("{Widget widget}/{action}", WidgetHandler, mux.Options{
//		"classes": []any{"Widget"},
//	})
//	r.Freeze()
//	http.Handle("/", r)
//
// A router is built, optionally frozen, then served. Registration after
// Freeze returns ErrFrozen.
//
// # Patterns
//
// A pattern is an optional method list followed by a path:
//
//	GET|POST:widget/{Widget widget}/{action}/({int page})
//
// Without a method list GET and POST are accepted. Every variable fills a
// whole '/'-delimited segment and is written {name} or {type name}. Parts
// in parentheses are optional and do not nest. A bare '*' matches anything
// and '\*' matches a literal asterisk.
//
// Type keywords select a conversion:
//
//	string         - raw segment (same as no type)
//	option         - raw segment, also readable as a route option
//	list, array    - split on ';'
//	semicolon_list - split on ';'
//	comma_list     - split on ','
//	dash_list      - split on '-'
//	float, double  - float64
//	int, integer   - int64
//
// Any other type name is a model type: the segment is passed to the
// router's Resolver and the result is available by name and by class.
//
// # Forward dispatch
//
// Routes are tried by ascending weight, then registration order. The first
// route whose methods and pattern accept the path wins. Typed arguments are
// converted lazily by RouteMatch.Process; ServeHTTP processes them before
// the handler runs and answers 404 when a conversion fails:
//
//	func WidgetHandler(w http.ResponseWriter, r *http.Request) {
//		m := mux.CurrentMatch(r)
//		widget := m.ByClass("Widget")["widget"]
//		...
//	}
//
// # Reverse dispatch
//
// Routes declaring "classes" (with "action" or "actions") or
// "class_actions" are indexed by class and action. GetRoute walks the
// subject's class hierarchy, then the '*' class, and renders the first
// route whose placeholders can all be filled:
//
//	u, err := r.GetRoute("edit", widget, nil) // "widget/42/edit"
//
// # Caching
//
// Snapshot and Restore serialize the route table; LoadCached wraps them
// around a CacheStore so that a process can skip rebuilding its routes.
package mux
