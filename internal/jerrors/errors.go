// Package jerrors implements the JSL typed error taxonomy (spec §7) and the
// resource-budget/gas model (spec §4.6). It follows the teacher's
// runtime-error shape (internal/interp/runtime/errors.go): one small struct
// per kind, each satisfying the error interface, each with a constructor.
package jerrors

import "fmt"

// Kind is one of the eleven taxonomy tags below (spec §7).
type Kind string

const (
	KindSyntax           Kind = "Syntax"
	KindSymbolNotFound   Kind = "SymbolNotFound"
	KindTypeError        Kind = "TypeError"
	KindArityError       Kind = "ArityError"
	KindDivisionByZero   Kind = "DivisionByZero"
	KindDomainError      Kind = "DomainError"
	KindPathError        Kind = "PathError"
	KindImmutablePrelude Kind = "ImmutablePrelude"
	KindResourceExhausted Kind = "ResourceExhausted"
	KindHostError        Kind = "HostError"
	KindUserError        Kind = "UserError"
)

// JSLError is the uniform error shape raised anywhere in the core: a typed
// Kind, a human-readable Message, and optional structured Details. It is
// exactly the record `try`'s handler receives (§4.1, §7).
type JSLError struct {
	Kind    Kind
	Message string
	Details any // nil, or a JSON-representable value.Value-compatible payload
}

// Error implements the error interface.
func (e *JSLError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs a JSLError of the given kind.
func New(kind Kind, format string, args ...any) *JSLError {
	return &JSLError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a structured details payload and returns the
// receiver for chaining at the construction site.
func (e *JSLError) WithDetails(details any) *JSLError {
	e.Details = details
	return e
}

// SymbolNotFound builds the error raised when a variable lookup misses all
// the way to the root of the environment chain (§3 Environment).
func SymbolNotFound(name string) *JSLError {
	return New(KindSymbolNotFound, "symbol not found: %s", name).WithDetails(map[string]any{"name": name})
}

// TypeErrorf builds a TypeError for an operator applied to a value of the
// wrong category (e.g. `get` on a number, per §7).
func TypeErrorf(context, expected, got string) *JSLError {
	return New(KindTypeError, "type error in %s: expected %s, got %s", context, expected, got).
		WithDetails(map[string]any{"context": context, "expected": expected, "got": got})
}

// ArityErrorf builds an ArityError for a fixed-arity special form or
// built-in called with the wrong argument count.
func ArityErrorf(name string, want, got int) *JSLError {
	return New(KindArityError, "%s expects %d argument(s), got %d", name, want, got).
		WithDetails(map[string]any{"operator": name, "want": want, "got": got})
}

// ArityRangeErrorf is the range-arity variant (e.g. 1 or 2 arguments).
func ArityRangeErrorf(name string, min, max, got int) *JSLError {
	return New(KindArityError, "%s expects between %d and %d argument(s), got %d", name, min, max, got).
		WithDetails(map[string]any{"operator": name, "min": min, "max": max, "got": got})
}

// DivisionByZero builds the error raised by `/` and `%` on a zero divisor.
func DivisionByZero(op string) *JSLError {
	return New(KindDivisionByZero, "division by zero in %s", op)
}

// DomainErrorf builds a DomainError (e.g. sqrt of a negative number).
func DomainErrorf(format string, args ...any) *JSLError {
	return New(KindDomainError, format, args...)
}

// PathErrorf builds the error raised by get-path/update-path/etc. when an
// intermediate path segment is missing and no default was supplied.
func PathErrorf(path string, format string, args ...any) *JSLError {
	msg := fmt.Sprintf(format, args...)
	return New(KindPathError, "path %q: %s", path, msg).WithDetails(map[string]any{"path": path})
}

// ImmutablePrelude builds the error raised by `def` targeting the frozen
// root environment (§4.1 `def`, testable property 5).
func ImmutablePrelude(name string) *JSLError {
	return New(KindImmutablePrelude, "cannot redefine %q: the prelude is immutable", name)
}

// HostErrorFrom converts a host dispatcher error object (§4.8) into a
// JSLError of kind HostError.
func HostErrorFrom(hostType, message string, details any) *JSLError {
	return (&JSLError{Kind: KindHostError, Message: message, Details: details}).withHostType(hostType)
}

func (e *JSLError) withHostType(hostType string) *JSLError {
	if e.Details == nil {
		e.Details = map[string]any{"hostType": hostType}
	} else if m, ok := e.Details.(map[string]any); ok {
		m["hostType"] = hostType
	}
	return e
}

// UserErrorf builds the error raised in-language by `error(type, message,
// details?)`.
func UserErrorf(userType, message string, details any) *JSLError {
	return (&JSLError{Kind: KindUserError, Message: message, Details: details}).withHostType(userType)
}

// ResourceExhausted builds the terminal error raised when memory, wall
// time, or stack depth caps are exceeded (§4.6; gas/step exhaustion is
// handled separately via Paused, not this error).
func ResourceExhausted(resource string) *JSLError {
	return New(KindResourceExhausted, "resource exhausted: %s", resource)
}

// Record renders the error as the {type, message, details} shape that
// `try` binds its handler argument to.
func (e *JSLError) Record() (kind string, message string, details any) {
	return string(e.Kind), e.Message, e.Details
}
