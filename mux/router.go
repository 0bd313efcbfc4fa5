package mux

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Router registers routes to be matched and dispatches a handler. It also
// renders URLs back from an action and a subject through the reverse index.
//
// A Router is built, optionally frozen, then served. Registration must not
// race with itself; matching and reverse lookups may run concurrently once
// the table is built.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.HandleFunc("GET:articles/{int id}", handler, nil)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches, or when a typed
	// segment of the matched route cannot be converted or resolved.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// The Allow header is always set before this handler is invoked.
	MethodNotAllowedHandler http.Handler

	// ForbiddenHandler is called when the permission check rejects a
	// match. If nil, a default 403 handler is used.
	ForbiddenHandler http.Handler

	table   *RouteTable
	reverse *ReverseIndex

	// mu guards the fields below against registration while serving.
	mu              sync.RWMutex
	prefix          string
	aliases         map[string]string
	handlers        map[string]http.Handler
	routeMapHooks   []RouteMapFunc
	fallbacks       []FallbackFunc
	permissionCheck PermissionFunc

	types    *TypeTable
	resolver Resolver
	logger   log.FieldLogger
	debug    bool
	metrics  *Metrics

	middlewares []MiddlewareFunc

	// handlerCache caches the middleware-wrapped handler per route
	// to avoid re-wrapping on every request.
	handlerCache sync.Map // map[*Route]http.Handler
}

// NewRouter returns a new router instance with an empty type table and
// the standard logrus logger.
func NewRouter() *Router {
	return &Router{
		table:    NewRouteTable(),
		reverse:  NewReverseIndex(),
		aliases:  make(map[string]string),
		handlers: make(map[string]http.Handler),
		types:    NewTypeTable(),
		logger:   log.StandardLogger(),
	}
}

// SetPrefix sets the path prefix stripped on forward dispatch and
// prepended on reverse dispatch. "/app" and "/app/" are equivalent; paths
// are only stripped on a segment boundary.
func (r *Router) SetPrefix(prefix string) *Router {
	r.mu.Lock()
	r.prefix = prefix
	r.mu.Unlock()
	return r
}

// Prefix returns the path prefix.
func (r *Router) Prefix() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefix
}

// SetResolver sets the resolver used for model-typed segments.
func (r *Router) SetResolver(resolver Resolver) *Router {
	r.resolver = resolver
	return r
}

// Resolver returns the configured resolver, if any.
func (r *Router) Resolver() Resolver {
	return r.resolver
}

// SetTypes replaces the model type table.
func (r *Router) SetTypes(types *TypeTable) *Router {
	if types == nil {
		types = NewTypeTable()
	}
	r.types = types
	return r
}

// Types returns the model type table.
func (r *Router) Types() *TypeTable {
	return r.types
}

// SetLogger sets the logger for diagnostics.
func (r *Router) SetLogger(logger log.FieldLogger) *Router {
	if logger == nil {
		logger = log.StandardLogger()
	}
	r.logger = logger
	return r
}

// Logger returns the logger.
func (r *Router) Logger() log.FieldLogger {
	return r.logger
}

// SetDebug enables a log line for every matched route.
func (r *Router) SetDebug(debug bool) *Router {
	r.debug = debug
	return r
}

// SetMetrics attaches dispatch counters.
func (r *Router) SetMetrics(m *Metrics) *Router {
	r.metrics = m
	return r
}

// SetPermissionCheck sets the hook that authorizes matches of routes
// declaring permissions.
func (r *Router) SetPermissionCheck(check PermissionFunc) *Router {
	r.mu.Lock()
	r.permissionCheck = check
	r.mu.Unlock()
	return r
}

// OnRouteMap adds a hook that can rewrite reverse substitution values.
// Hooks run in registration order.
func (r *Router) OnRouteMap(fn RouteMapFunc) *Router {
	r.mu.Lock()
	r.routeMapHooks = append(r.routeMapHooks, fn)
	r.mu.Unlock()
	return r
}

// OnReverseFallback adds a hook consulted when reverse dispatch finds
// nothing. The first non-empty answer wins.
func (r *Router) OnReverseFallback(fn FallbackFunc) *Router {
	r.mu.Lock()
	r.fallbacks = append(r.fallbacks, fn)
	r.mu.Unlock()
	return r
}

// RegisterHandler names a handler so that routes can reference it through
// the "handler" option. Named handlers survive a cache restore.
func (r *Router) RegisterHandler(name string, handler http.Handler) *Router {
	r.mu.Lock()
	r.handlers[name] = handler
	r.mu.Unlock()
	return r
}

func (r *Router) lookupHandler(name string) http.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}

// AddRoute compiles pattern and registers a route with the given options.
// A route with the same pattern as an earlier one replaces it.
func (r *Router) AddRoute(pattern string, options Options) (*Route, error) {
	route, err := NewRoute(pattern, options)
	if err != nil {
		return nil, err
	}

	aliases, err := parseAliases(route)
	if err != nil {
		return nil, err
	}

	if err := r.insert(route); err != nil {
		return nil, err
	}

	for from, to := range aliases {
		if err := r.AddAlias(from, to); err != nil {
			return nil, err
		}
	}

	return route, nil
}

// insert attaches route to the router and indexes it.
func (r *Router) insert(route *Route) error {
	route.router = r

	replaced, err := r.table.Add(route)
	if err != nil {
		return err
	}
	if replaced != nil {
		r.reverse.Remove(replaced)
		r.handlerCache.Delete(replaced)
		r.logger.WithField("pattern", route.original).Debug("route replaced")
	}
	r.reverse.Add(route)

	return nil
}

// Handle registers a route with a handler.
func (r *Router) Handle(pattern string, handler http.Handler, options Options) (*Route, error) {
	route, err := r.AddRoute(pattern, options)
	if err != nil {
		return nil, err
	}
	return route.Handler(handler), nil
}

// HandleFunc registers a route with a handler function.
func (r *Router) HandleFunc(pattern string, f func(http.ResponseWriter, *http.Request), options Options) (*Route, error) {
	return r.Handle(pattern, http.HandlerFunc(f), options)
}

// AddAlias makes forward dispatch treat path from as path to.
func (r *Router) AddAlias(from, to string) error {
	if r.table.Frozen() {
		return ErrFrozen
	}
	r.mu.Lock()
	r.aliases[strings.TrimPrefix(from, "/")] = strings.TrimPrefix(to, "/")
	r.mu.Unlock()
	return nil
}

// Aliases returns a copy of the alias map.
func (r *Router) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Freeze sorts the route table and rejects further registration.
func (r *Router) Freeze() *Router {
	r.table.Freeze()
	return r
}

// Frozen reports whether Freeze was called.
func (r *Router) Frozen() bool {
	return r.table.Frozen()
}

// Routes returns the routes in dispatch order.
func (r *Router) Routes() []*Route {
	return append([]*Route(nil), r.table.Routes()...)
}

// RouteByID returns a route by id. Ids are case-insensitive.
func (r *Router) RouteByID(id string) (*Route, error) {
	route, ok := r.table.Get(id)
	if !ok {
		return nil, fmt.Errorf("mux: route %q: %w", id, ErrNotFound)
	}
	return route, nil
}

// Walk calls walkFn for every route in dispatch order.
func (r *Router) Walk(walkFn WalkFunc) error {
	for _, route := range r.table.Routes() {
		err := walkFn(route, r)
		if err == SkipRoute {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// forwardPath strips the leading slash and the router prefix, then
// applies path aliases.
func (r *Router) forwardPath(path string) string {
	path = strings.TrimPrefix(path, "/")

	r.mu.RLock()
	defer r.mu.RUnlock()

	if prefix := strings.Trim(r.prefix, "/"); prefix != "" {
		if path == prefix {
			path = ""
		} else if rest, ok := strings.CutPrefix(path, prefix+"/"); ok {
			path = rest
		}
	}
	if to, ok := r.aliases[path]; ok {
		path = to
	}
	return path
}

// Match scans the routes in dispatch order and fills match with the first
// route accepting path and method. On failure match.MatchErr is set to
// ErrMethodMismatch when some route accepts the path with another method
// and to ErrNotFound otherwise, and the rest of match is cleared.
func (r *Router) Match(path, method string, match *RouteMatch) bool {
	path = r.forwardPath(path)
	routes := r.table.Routes()

	for _, route := range routes {
		if route.Match(path, method, match) {
			if match.Handler != nil && len(r.middlewares) > 0 {
				if cached, ok := r.handlerCache.Load(match.Route); ok {
					match.Handler = cached.(http.Handler)
				} else {
					wrapped := r.applyMiddleware(match.Handler)
					r.handlerCache.Store(match.Route, wrapped)
					match.Handler = wrapped
				}
			}
			if r.debug {
				r.logger.WithFields(log.Fields{
					"method": method,
					"path":   path,
					"route":  route.ID(),
				}).Debug("route matched")
			}
			r.metrics.forwardResult(ResultMatched)
			return true
		}
	}

	for _, route := range routes {
		if route.pattern.MatchString(path) {
			*match = RouteMatch{MatchErr: ErrMethodMismatch, methodNotAllowed: true}
			r.metrics.forwardResult(ResultMethodMismatch)
			r.logger.WithFields(log.Fields{"method": method, "path": path}).Debug("method not allowed")
			return false
		}
	}

	*match = RouteMatch{MatchErr: ErrNotFound}
	r.metrics.forwardResult(ResultNotFound)
	r.logger.WithFields(log.Fields{"method": method, "path": path}).Debug("no route found")
	return false
}

// ServeHTTP dispatches the handler registered in the matched route.
// Typed arguments are processed before the handler runs, so handlers can
// read them from CurrentMatch.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Normalize the request path per RFC 3986 Section 5.2.4
	// (removing dot segments).
	if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
		u := *req.URL
		u.Path = cleaned
		u.RawPath = ""
		req = req.Clone(req.Context())
		req.URL = &u
	}

	var (
		match   RouteMatch
		handler http.Handler
	)

	if r.Match(req.URL.Path, req.Method, &match) {
		req = setRouteContext(req, &match)
		handler = r.dispatchHandler(req, &match)
	} else if match.methodNotAllowed {
		w.Header().Set("Allow", strings.Join(allowedMethods(r, req), ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = defaultMethodNotAllowedHandler
		}
	} else {
		handler = r.notFoundHandler()
	}

	handler.ServeHTTP(w, req)
}

// dispatchHandler processes the match and picks the handler to run.
func (r *Router) dispatchHandler(req *http.Request, match *RouteMatch) http.Handler {
	if err := match.Process(req.Context()); err != nil {
		r.logger.WithError(err).WithField("route", match.Route.ID()).Debug("route arguments rejected")
		return r.notFoundHandler()
	}

	r.mu.RLock()
	check := r.permissionCheck
	r.mu.RUnlock()

	if perms := match.Route.Permissions(); check != nil && len(perms) > 0 {
		if err := check(req, match, perms); err != nil {
			r.logger.WithError(err).WithField("route", match.Route.ID()).Info("permission denied")
			if r.ForbiddenHandler != nil {
				return r.ForbiddenHandler
			}
			return defaultForbiddenHandler
		}
	}

	if match.Handler == nil {
		return r.notFoundHandler()
	}
	return match.Handler
}

func (r *Router) notFoundHandler() http.Handler {
	if r.NotFoundHandler != nil {
		return r.NotFoundHandler
	}
	return defaultNotFoundHandler
}

// GetRoute renders the URL for action on subject. subject is a Model, a
// class name, a list of class names or nil. An empty result with a nil
// error means no route applies.
func (r *Router) GetRoute(action string, subject any, opts *ReverseOptions) (string, error) {
	o := opts.clone()

	var (
		model   Model
		classes []string
	)
	switch s := subject.(type) {
	case nil:
	case Model:
		model = s
		classes = r.types.Hierarchy(s.ModelType())
		if dc, ok := s.(DerivedClasser); ok {
			for k, v := range dc.DerivedClasses() {
				if _, exists := o.DerivedClasses[k]; !exists {
					o.DerivedClasses[k] = v
				}
			}
		}
	case string:
		classes = []string{s}
	case []string:
		classes = s
	default:
		return "", &UnsupportedError{Value: subject}
	}

	if o.Current != nil {
		for k, v := range o.Current.Named() {
			if _, exists := o.Values[k]; !exists {
				o.Values[k] = v
			}
		}
		for k, v := range o.Current.Vars {
			if _, exists := o.Values[k]; !exists {
				o.Values[k] = v
			}
		}
	}

	if route, ok := r.table.Get(action); ok {
		if u, ok := route.GetRoute(action, model, o); ok {
			r.metrics.reverseResult(ResultMatched)
			return r.finishURL(u, o), nil
		}
	}

	for _, route := range r.reverse.Candidates(classes, action) {
		if u, ok := route.GetRoute(action, model, o); ok {
			r.metrics.reverseResult(ResultMatched)
			return r.finishURL(u, o), nil
		}
	}

	r.mu.RLock()
	fallbacks := r.fallbacks
	r.mu.RUnlock()

	for _, fb := range fallbacks {
		if u := fb(action, subject, o); u != "" {
			r.metrics.reverseResult(ResultFallback)
			return r.finishURL(u, o), nil
		}
	}

	r.metrics.reverseResult(ResultNotFound)
	r.logger.WithFields(log.Fields{
		"action":  action,
		"classes": classes,
	}).Warn("no reverse route found")

	return "", nil
}

// finishURL appends the query string and prepends the prefix.
func (r *Router) finishURL(u string, o *ReverseOptions) string {
	if len(o.Query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + o.Query.Encode()
	}
	return joinPrefix(r.Prefix(), u)
}

// joinPrefix prepends prefix to u on a segment boundary. A leading slash
// on prefix makes the result absolute.
func joinPrefix(prefix, u string) string {
	if prefix == "" {
		return u
	}
	lead := ""
	if strings.HasPrefix(prefix, "/") {
		lead = "/"
	}
	if p := strings.Trim(prefix, "/"); p != "" {
		return lead + p + "/" + strings.TrimPrefix(u, "/")
	}
	return lead + strings.TrimPrefix(u, "/")
}

func (r *Router) applyRouteMapHooks(route *Route, action string, subject Model, values map[string]string) map[string]string {
	r.mu.RLock()
	hooks := r.routeMapHooks
	r.mu.RUnlock()

	for _, hook := range hooks {
		if out := hook(route, action, subject, values); out != nil {
			values = out
		}
	}
	return values
}

// applyMiddleware wraps the handler with all registered middleware.
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i].Middleware(handler)
	}
	return handler
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
}

// parseAliases reads the "aliases" option: a list of paths aliased to
// "alias_target" (or the route's clean pattern), or a map of alias path
// to target path.
func parseAliases(route *Route) (map[string]string, error) {
	v, ok := route.options[OptionAliases]
	if !ok || v == nil {
		return nil, nil
	}

	out := make(map[string]string)
	if m := toMap(v); m != nil {
		for from, to := range m {
			s, ok := to.(string)
			if !ok {
				return nil, fmt.Errorf("mux: route %q: alias %q must map to a string, got %T", route.original, from, to)
			}
			out[from] = s
		}
		return out, nil
	}

	target := route.options.String(OptionAliasTarget)
	if target == "" {
		target = route.CleanPattern()
	}
	for _, from := range toStrings(v) {
		out[from] = target
	}
	return out, nil
}
