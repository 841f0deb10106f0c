// Package errs defines NanoDB's error taxonomy: SchemaError, TypeError,
// PlanError, IOError, CancelledError. Each is a distinct, wrappable type so
// callers can use errors.As to branch on kind without parsing messages, and
// errors.Is to compare against the sentinel Kind values below.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which bucket of the taxonomy an error belongs to.
type Kind int

const (
	Schema Kind = iota
	Type
	Plan
	IO
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Schema:
		return "SchemaError"
	case Type:
		return "TypeError"
	case Plan:
		return "PlanError"
	case IO:
		return "IOError"
	case Cancelled:
		return "CancelledError"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type for every kind in the taxonomy.
type Error struct {
	Kind     Kind
	Message  string
	Location string
	Cause    error
}

func (e *Error) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, errs.SchemaErrorSentinel) match any *Error of that
// Kind, regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Message == ""
	}
	return false
}

func newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func SchemaErrorf(format string, args ...interface{}) *Error    { return newf(Schema, format, args...) }
func TypeErrorf(format string, args ...interface{}) *Error      { return newf(Type, format, args...) }
func PlanErrorf(format string, args ...interface{}) *Error      { return newf(Plan, format, args...) }
func IOErrorf(format string, args ...interface{}) *Error        { return newf(IO, format, args...) }
func CancelledErrorf(format string, args ...interface{}) *Error { return newf(Cancelled, format, args...) }

// Wrap attaches kind and cause, preserving the cause for errors.Unwrap.
func Wrap(k Kind, cause error, format string, args ...interface{}) *Error {
	e := newf(k, format, args...)
	e.Cause = cause
	return e
}

// AmbiguousName is the specific SchemaError raised by Schema.ColumnIndex
// when an unqualified name matches more than one column.
func AmbiguousName(name string) *Error {
	return SchemaErrorf("ambiguous column reference %q", name)
}

// Sentinels for errors.Is comparisons against a Kind only.
var (
	SchemaErrorSentinel    = &Error{Kind: Schema}
	TypeErrorSentinel      = &Error{Kind: Type}
	PlanErrorSentinel      = &Error{Kind: Plan}
	IOErrorSentinel        = &Error{Kind: IO}
	CancelledErrorSentinel = &Error{Kind: Cancelled}
)

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
