package mux

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("mux: syntax error")

// ErrUnsupported is matched by every *UnsupportedError.
var ErrUnsupported = errors.New("mux: unsupported value")

// ErrFrozen is returned when a route is registered after Router.Freeze.
var ErrFrozen = errors.New("mux: router is frozen")

// SyntaxError reports a malformed route pattern or a path segment that
// cannot be converted to its declared numeric type.
type SyntaxError struct {
	// Pattern is the route pattern, empty for conversion errors.
	Pattern string
	// Value is the offending token or segment value.
	Value string
	// Msg describes the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("mux: %s %q in pattern %q", e.Msg, e.Value, e.Pattern)
	}
	return fmt.Sprintf("mux: %s %q", e.Msg, e.Value)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NotFoundError reports a model-typed path segment the Resolver could not
// turn into a Model. It also matches ErrNotFound.
type NotFoundError struct {
	// Name is the variable name of the segment.
	Name string
	// Type is the declared model type.
	Type string
	// Value is the raw segment value.
	Value string
	// Err is the underlying resolver error, if any.
	Err error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("mux: %s (%s) model not found with value %q", e.Name, e.Type, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// UnsupportedError is returned by reverse dispatch when the subject is not
// a Model, a class name or a list of class names.
type UnsupportedError struct {
	Value any
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("mux: unsupported reverse route subject of type %T", e.Value)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
