package mux

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var errNoResolver = errors.New("no resolver configured")

// RouteMatch stores information about a matched route. It is created per
// request; the typed arguments are materialized once, on the first call
// to Process.
type RouteMatch struct {
	// Route is the matched route, if any.
	Route *Route

	// Handler is the handler to use for the matched route.
	Handler http.Handler

	// Vars contains the raw path variables of the matched route.
	Vars map[string]string

	// MatchErr is set to ErrMethodMismatch when the request method
	// does not match but the path does, and to ErrNotFound when no
	// route matched at all.
	MatchErr error

	// methodNotAllowed signals that the router should respond with
	// 405 Method Not Allowed (RFC 9110 Section 15.5.6) instead of
	// 404 Not Found.
	methodNotAllowed bool

	segments []string
	present  []bool

	processed  bool
	processErr error
	values     []any
	named      map[string]any
	byClass    map[string]map[string]Model
	args       []any
	options    Options
}

// Segment returns the raw path segment at index. The boolean is false
// for positions an optional group left empty.
func (m *RouteMatch) Segment(index int) (string, bool) {
	if index < 0 || index >= len(m.segments) || !m.present[index] {
		return "", false
	}
	return m.segments[index], true
}

// Segments returns the raw path segments padded to the pattern length.
// Absent positions are empty strings; use Segment to tell them apart.
func (m *RouteMatch) Segments() []string {
	return append([]string(nil), m.segments...)
}

// Processed reports whether the typed arguments were materialized.
func (m *RouteMatch) Processed() bool {
	return m.processed
}

// Process converts every variable segment to its declared type and
// resolves model-typed segments through the router's Resolver. It runs
// once; later calls return the first result.
func (m *RouteMatch) Process(ctx context.Context) error {
	if m.processed {
		return m.processErr
	}
	m.processed = true
	m.processErr = m.process(ctx)
	return m.processErr
}

func (m *RouteMatch) process(ctx context.Context) error {
	if m.Route == nil {
		return ErrNotFound
	}

	segs := m.Route.pattern.segments
	m.values = make([]any, len(m.segments))
	m.named = make(map[string]any, len(segs)*2)
	m.byClass = make(map[string]map[string]Model)
	m.options = Options{}

	for i := range m.segments {
		if m.present[i] {
			m.values[i] = m.segments[i]
		}
	}

	for i, seg := range segs {
		var value any
		raw, ok := m.Segment(i)
		if ok {
			value = raw
			if !seg.Fixed {
				v, err := m.convert(ctx, seg, raw)
				if err != nil {
					return err
				}
				value = v
			}
		}
		m.values[i] = value
		if !seg.Fixed && seg.Name != "" {
			m.named[seg.Name] = value
		}
		m.named["uri"+strconv.Itoa(i)] = value
	}

	for _, arg := range m.Route.options.List(OptionArguments) {
		if idx, ok := toIndex(arg); ok {
			if idx >= 0 && idx < len(m.values) && m.values[idx] != nil {
				m.args = append(m.args, m.values[idx])
			} else {
				m.args = append(m.args, "")
			}
			continue
		}
		m.args = append(m.args, arg)
	}

	return nil
}

// convert applies the segment conversion to a present raw value.
func (m *RouteMatch) convert(ctx context.Context, seg Segment, raw string) (any, error) {
	switch seg.Kind {
	case KindOption:
		m.options[seg.Name] = raw
		return raw, nil
	case KindModel:
		return m.resolve(ctx, seg, raw)
	default:
		return convertScalar(seg.Kind, raw)
	}
}

// resolve turns a model-typed segment into a Model and records it under
// every class of its hierarchy.
func (m *RouteMatch) resolve(ctx context.Context, seg Segment, raw string) (Model, error) {
	resolver := m.Route.resolver()
	if resolver == nil {
		return nil, &NotFoundError{Name: seg.Name, Type: seg.Type, Value: raw, Err: errNoResolver}
	}

	model, err := resolver.Resolve(ctx, m.Route.types().Canonical(seg.Type), raw)
	if err != nil {
		return nil, &NotFoundError{Name: seg.Name, Type: seg.Type, Value: raw, Err: err}
	}
	if model == nil {
		return nil, &NotFoundError{Name: seg.Name, Type: seg.Type, Value: raw}
	}

	for _, class := range m.Route.types().Hierarchy(model.ModelType()) {
		byName, ok := m.byClass[class]
		if !ok {
			byName = make(map[string]Model)
			m.byClass[class] = byName
		}
		byName[seg.Name] = model
	}

	return model, nil
}

// Named returns the typed values by variable name, plus "uriN" aliases
// for every segment position. It is nil until Process ran.
func (m *RouteMatch) Named() map[string]any {
	return m.named
}

// Value returns a single typed value by variable name.
func (m *RouteMatch) Value(name string) (any, bool) {
	v, ok := m.named[name]
	return v, ok
}

// ByClass returns the models of the given class (or a subclass) by
// variable name. Class names are case-insensitive.
func (m *RouteMatch) ByClass(class string) map[string]Model {
	return m.byClass[strings.ToLower(class)]
}

// Args returns the positional arguments declared by the "arguments" route
// option, with numeric entries replaced by the converted segment.
func (m *RouteMatch) Args() []any {
	return m.args
}

// Option returns a route option, with values of option-typed segments
// taking precedence over the route definition.
func (m *RouteMatch) Option(name string) (any, bool) {
	if v, ok := m.options[name]; ok {
		return v, true
	}
	if m.Route == nil {
		return nil, false
	}
	return m.Route.Option(name)
}
