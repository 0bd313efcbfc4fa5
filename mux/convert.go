package mux

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ConversionKind is the closed set of conversions applied to a path
// variable. Any type name not in the builtin table is a model type and
// is handed to the Resolver.
type ConversionKind int

const (
	// KindString keeps the raw segment. Used for untyped variables.
	KindString ConversionKind = iota
	// KindOption keeps the raw segment and also exposes it as a route option.
	KindOption
	// KindSemicolonList splits on ';'.
	KindSemicolonList
	// KindCommaList splits on ','.
	KindCommaList
	// KindDashList splits on '-'.
	KindDashList
	// KindFloat parses a float64.
	KindFloat
	// KindInteger parses an int64.
	KindInteger
	// KindModel resolves the segment to a Model through the Resolver.
	KindModel
)

var kindNames = [...]string{
	KindString:        "string",
	KindOption:        "option",
	KindSemicolonList: "list",
	KindCommaList:     "comma_list",
	KindDashList:      "dash_list",
	KindFloat:         "float",
	KindInteger:       "integer",
	KindModel:         "model",
}

func (k ConversionKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "ConversionKind(" + strconv.Itoa(int(k)) + ")"
}

// builtinKinds maps type keywords to their conversion.
// Used in route variable definitions: {type name}.
var builtinKinds = map[string]ConversionKind{
	"string":         KindString,
	"option":         KindOption,
	"list":           KindSemicolonList,
	"array":          KindSemicolonList,
	"semicolon_list": KindSemicolonList,
	"comma_list":     KindCommaList,
	"dash_list":      KindDashList,
	"float":          KindFloat,
	"double":         KindFloat,
	"int":            KindInteger,
	"integer":        KindInteger,
}

// listSeparators holds the delimiter of every list kind.
var listSeparators = map[ConversionKind]string{
	KindSemicolonList: ";",
	KindCommaList:     ",",
	KindDashList:      "-",
}

// numericRegexp accepts the decimal forms a path segment may use for a
// number: optional sign, digits with an optional fraction, and an
// optional exponent. NaN and Inf are rejected.
var numericRegexp = regexp.MustCompile(`^\s*[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?\s*$`)

// kindOf returns the conversion for a declared type name. An empty type
// is untyped.
func kindOf(typeName string) ConversionKind {
	if typeName == "" {
		return KindString
	}
	if k, ok := builtinKinds[typeName]; ok {
		return k
	}
	return KindModel
}

// isBuiltinKind reports whether name is a builtin type keyword.
func isBuiltinKind(name string) bool {
	_, ok := builtinKinds[name]
	return ok
}

// convertScalar applies every non-model conversion to a raw segment.
func convertScalar(kind ConversionKind, raw string) (any, error) {
	switch kind {
	case KindSemicolonList, KindCommaList, KindDashList:
		return splitList(raw, listSeparators[kind]), nil
	case KindFloat:
		return parseFloat(raw)
	case KindInteger:
		return parseInteger(raw)
	default:
		return raw, nil
	}
}

func splitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return strings.Split(raw, sep)
}

func parseFloat(raw string) (float64, error) {
	if !numericRegexp.MatchString(raw) {
		return 0, &SyntaxError{Value: raw, Msg: "invalid float format"}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &SyntaxError{Value: raw, Msg: "invalid float format"}
	}
	return f, nil
}

func parseInteger(raw string) (int64, error) {
	if !numericRegexp.MatchString(raw) {
		return 0, &SyntaxError{Value: raw, Msg: "invalid integer format"}
	}
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &SyntaxError{Value: raw, Msg: "invalid integer format"}
	}
	return int64(f), nil
}
