package mux

import (
	"fmt"
	"strconv"
)

// Route option keys understood by the engine.
const (
	OptionID           = "id"
	OptionWeight       = "weight"
	OptionClasses      = "classes"
	OptionActions      = "actions"
	OptionAction       = "action"
	OptionClassActions = "class_actions"
	OptionArguments    = "arguments"
	OptionPermission   = "permission"
	OptionPermissions  = "permissions"
	OptionCache        = "cache"
	OptionAliases      = "aliases"
	OptionAliasTarget  = "alias_target"
	OptionHandler      = "handler"
)

// Options is the option bag of a route, usually decoded from a route
// definition file.
type Options map[string]any

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Get returns the raw option value.
func (o Options) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// String returns the option formatted as a string, or "" when unset.
func (o Options) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	return toString(v)
}

// Float returns the option as a float64.
func (o Options) Float(key string) (float64, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Strings returns the option as a list of strings. A scalar becomes a
// single element list.
func (o Options) Strings(key string) []string {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	return toStrings(v)
}

// List returns the option as a list of raw values.
func (o Options) List(key string) []any {
	switch v := o[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}

// Map returns the option as a string keyed map, or nil.
func (o Options) Map(key string) map[string]any {
	return toMap(o[key])
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case Model:
		return s.ModelID()
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// toIndex reads a positional argument reference.
func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	case float64, float32:
		f, _ := toFloat(n)
		if f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	default:
		f, ok := toFloat(v)
		return int(f), ok
	}
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			out = append(out, toString(e))
		}
		return out
	case string:
		return []string{s}
	default:
		return []string{toString(v)}
	}
}

func toMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Options:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[toString(k)] = e
		}
		return out
	}
	return nil
}
