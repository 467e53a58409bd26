package normalize

import (
	"errors"
	"runtime"
)

// Kind identifies which normalization rule produced an Error.  Values that
// already implement error are returned unchanged by Normalize and therefore
// never carry a Kind.
type Kind string

const (
	// KindString marks an error built from a raw string value.
	KindString Kind = "string"
	// KindPattern marks an error built from a regular expression value.
	KindPattern Kind = "pattern"
	// KindValue marks an error built from a structured value (map, slice,
	// array or struct) that serialized cleanly.
	KindValue Kind = "value"
	// KindCircular marks an error built from a self-referential structure.
	KindCircular Kind = "circular"
	// KindBuiltin marks an error built from a special built-in value such as
	// a time, a big number or a function.
	KindBuiltin Kind = "builtin"
	// KindOpaque marks an error built from the default string form of a
	// value no other rule claimed.
	KindOpaque Kind = "opaque"
)

const stackDepth = 32

// Error is the normalized form of an arbitrary captured failure value.  It
// always carries a human-readable message and the Kind of the rule that
// produced it, keeps a reference to the original raw value for introspection,
// and records the call stack at the point of normalization.
//
// Error values are non-mutating: WithCause returns a copy.  A shared Error
// is therefore safe to read from multiple goroutines.
type Error struct {
	message string
	kind    Kind
	value   any
	cause   error
	fields  map[string]any
	stack   []uintptr
}

func newError(kind Kind, message string, value any) *Error {
	return &Error{
		message: message,
		kind:    kind,
		value:   value,
		stack:   captureStack(),
	}
}

func (e *Error) Error() string {
	return e.message
}

// Kind returns the discriminator of the rule that produced this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Value returns the original raw value this error was normalized from.
func (e *Error) Value() any {
	return e.value
}

// Unwrap returns the causal predecessor attached via WithCause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the error with cause attached as its causal
// predecessor.  The receiver is not modified.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// Fields returns a copy of the entries captured from a structured input.
// Mutating the returned map does not affect the error.
func (e *Error) Fields() map[string]any {
	if e.fields == nil {
		return nil
	}
	out := make(map[string]any, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// StackTrace resolves the call stack recorded when the error was built,
// most recent call first.
func (e *Error) StackTrace() []runtime.Frame {
	if len(e.stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(e.stack)
	out := make([]runtime.Frame, 0, len(e.stack))
	for {
		fr, more := frames.Next()
		out = append(out, fr)
		if !more {
			break
		}
	}
	return out
}

// IsNormalized reports whether err is, or wraps, a normalized Error.
func IsNormalized(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// captureStack records the stack from inside Normalize outward.  The skip
// count steps over runtime.Callers, captureStack, newError and one dispatch
// frame; depending on the rule taken the first recorded frame is Normalize
// itself or a normalize internal, with the caller right behind it.
func captureStack() []uintptr {
	pc := make([]uintptr, stackDepth)
	n := runtime.Callers(4, pc)
	if n == 0 {
		return nil
	}
	return pc[:n]
}
