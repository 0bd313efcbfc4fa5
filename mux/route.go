package mux

import (
	"net/http"
	"strings"
)

// Permission is a pre-dispatch authorization requirement declared by a
// route through the "permission" or "permissions" options.
type Permission struct {
	// Action is the permission name.
	Action string
	// Context names the path variable holding the object the permission
	// applies to, if any.
	Context string
	// Options are passed to the permission check unchanged.
	Options map[string]any
}

// Route stores a compiled pattern and the options of one route definition.
// A Route is not modified by matching; per-request state lives in RouteMatch.
type Route struct {
	router       *Router
	original     string
	pattern      *CompiledPattern
	options      Options
	id           string
	weight       float64
	seq          int
	handler      http.Handler
	classActions map[string][]string
	permissions  []Permission
}

// NewRoute compiles pattern and returns a route that is not attached to a
// router. Model-typed variables of such a route cannot be resolved.
func NewRoute(pattern string, options Options) (*Route, error) {
	compiled, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	if options == nil {
		options = Options{}
	}

	r := &Route{
		original:     pattern,
		pattern:      compiled,
		options:      options,
		classActions: parseClassActions(options),
		permissions:  parsePermissions(options),
	}

	r.id = options.String(OptionID)
	if r.id == "" {
		r.id = compiled.CleanPattern()
	}
	r.weight, _ = options.Float(OptionWeight)

	return r, nil
}

// Match matches this route against a path and method. On success the
// match is replaced with the raw path segments of this request; on failure
// it is left untouched. Typed conversion is deferred to RouteMatch.Process.
func (r *Route) Match(path, method string, match *RouteMatch) bool {
	if !r.pattern.AllowsMethod(method) {
		return false
	}
	if !r.pattern.MatchString(path) {
		return false
	}

	parts := strings.Split(path, "/")
	n := len(r.pattern.segments)
	if len(parts) > n {
		n = len(parts)
	}
	segments := make([]string, n)
	present := make([]bool, n)
	copy(segments, parts)
	for i := range parts {
		present[i] = true
	}

	var vars map[string]string
	for i, seg := range r.pattern.segments {
		if seg.Fixed || !present[i] {
			continue
		}
		if vars == nil {
			vars = make(map[string]string)
		}
		vars[seg.Name] = segments[i]
	}

	*match = RouteMatch{
		Route:    r,
		Handler:  r.GetHandler(),
		Vars:     vars,
		segments: segments,
		present:  present,
	}

	return true
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	r.handler = handler
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// GetHandler returns the handler for the route. A handler set directly
// wins over one referenced by name through the "handler" option.
func (r *Route) GetHandler() http.Handler {
	if r.handler != nil {
		return r.handler
	}
	if r.router != nil {
		if name := r.options.String(OptionHandler); name != "" {
			return r.router.lookupHandler(name)
		}
	}
	return nil
}

// ID returns the route id: the "id" option or the clean pattern.
func (r *Route) ID() string {
	return r.id
}

// String returns the pattern the route was created from.
func (r *Route) String() string {
	return r.original
}

// Pattern returns the compiled pattern.
func (r *Route) Pattern() *CompiledPattern {
	return r.pattern
}

// CleanPattern returns the pattern used for reverse substitution.
func (r *Route) CleanPattern() string {
	return r.pattern.CleanPattern()
}

// Methods returns the methods the route matches against.
func (r *Route) Methods() []string {
	return r.pattern.Methods()
}

// Weight returns the ordering weight. Lower weights are tried first.
func (r *Route) Weight() float64 {
	return r.weight
}

// Options returns a copy of the route options.
func (r *Route) Options() Options {
	return r.options.Clone()
}

// Option returns a single route option.
func (r *Route) Option(key string) (any, bool) {
	return r.options.Get(key)
}

// ClassActions returns the reverse bindings as class => actions.
func (r *Route) ClassActions() map[string][]string {
	out := make(map[string][]string, len(r.classActions))
	for k, v := range r.classActions {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Permissions returns the permissions required before dispatch.
func (r *Route) Permissions() []Permission {
	return append([]Permission(nil), r.permissions...)
}

// Router returns the router the route is registered with, if any.
func (r *Route) Router() *Router {
	return r.router
}

// GetRoute renders the route for a reverse lookup. The boolean is false
// when a required placeholder has no value, which means the route does
// not apply to this subject.
func (r *Route) GetRoute(action string, subject Model, opts *ReverseOptions) (string, bool) {
	if opts == nil {
		opts = &ReverseOptions{}
	}

	values := r.routeMap(action, subject, opts)
	if r.router != nil {
		values = r.router.applyRouteMapHooks(r, action, subject, values)
	}

	u, ok := r.pattern.render(values)
	if !ok || u == "" {
		return "", false
	}
	return u, true
}

// routeMap builds the substitution values for a reverse render.
func (r *Route) routeMap(action string, subject Model, opts *ReverseOptions) map[string]string {
	values := map[string]string{"action": action}
	for k, v := range opts.Values {
		if _, ok := values[k]; ok {
			continue
		}
		if s, ok := scalarString(v); ok {
			values[k] = s
		}
	}

	var hierarchy []string
	if subject != nil {
		hierarchy = r.types().Hierarchy(subject.ModelType())
	}

	for _, seg := range r.pattern.segments {
		if seg.Fixed || seg.Type == "" {
			continue
		}
		switch {
		case subject != nil && matchInArray(hierarchy, strings.ToLower(seg.Type)):
			values[seg.Name] = subject.ModelID()
		case lookupFold(opts.DerivedClasses, seg.Type) != "":
			values[seg.Name] = lookupFold(opts.DerivedClasses, seg.Type)
		}
	}

	if subject != nil {
		if _, ok := values["id"]; !ok {
			values["id"] = subject.ModelID()
		}
	}

	return values
}

func (r *Route) types() *TypeTable {
	if r.router != nil && r.router.types != nil {
		return r.router.types
	}
	return defaultTypes
}

func (r *Route) resolver() Resolver {
	if r.router != nil {
		return r.router.resolver
	}
	return nil
}

// defaultTypes serves routes without a router.
var defaultTypes = NewTypeTable()

// scalarString formats values that can be substituted into a path.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string, []byte, bool, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return toString(s), true
	case Model:
		return s.ModelID(), true
	}
	return "", false
}

// lookupFold returns m[key] comparing keys case-insensitively.
func lookupFold(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// parseClassActions reads the reverse bindings of a route: either the
// "class_actions" map, or "classes" combined with "actions" or "action".
// A missing action binds every action through '*'.
func parseClassActions(o Options) map[string][]string {
	if o.Has(OptionClassActions) {
		out := make(map[string][]string)
		for class, actions := range o.Map(OptionClassActions) {
			out[class] = toStrings(actions)
		}
		return out
	}

	classes := o.Strings(OptionClasses)
	if len(classes) == 0 {
		return nil
	}

	actions := o.Strings(OptionActions)
	if len(actions) == 0 {
		if a := o.String(OptionAction); a != "" && a != "{action}" {
			actions = []string{a}
		} else {
			actions = []string{"*"}
		}
	}

	out := make(map[string][]string, len(classes))
	for _, class := range classes {
		out[class] = actions
	}
	return out
}

// parsePermissions reads "permission" (a single action) and "permissions"
// (a list of actions or of maps with action, context and options keys).
func parsePermissions(o Options) []Permission {
	var out []Permission
	if a := o.String(OptionPermission); a != "" {
		out = append(out, Permission{Action: a})
	}
	for _, p := range o.List(OptionPermissions) {
		if m := toMap(p); m != nil {
			perm := Permission{Options: toMap(m["options"])}
			if v, ok := m["action"]; ok {
				perm.Action = toString(v)
			}
			if v, ok := m["context"]; ok && v != nil {
				perm.Context = toString(v)
			}
			if perm.Action != "" {
				out = append(out, perm)
			}
			continue
		}
		if a := toString(p); a != "" {
			out = append(out, Permission{Action: a})
		}
	}
	return out
}
