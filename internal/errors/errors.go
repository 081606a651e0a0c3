package errors

import "fmt"

// Error is saga's structured error type. It carries enough context for the
// (out-of-process) tool-protocol surface to render a short human-readable
// message plus a structured kind.
type Error struct {
	Kind      Kind
	Message   string
	Severity  Severity
	Details   map[string]string
	Cause     error
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/As across the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail attaches a key/value detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind. Severity and retryability are
// derived from the kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Severity:  severityForKind(kind),
		Cause:     cause,
		Retryable: retryableForKind(kind),
	}
}

// Wrap turns an existing error into a structured Error of the given kind.
// Returns nil if err is nil.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return New(kind, err.Error(), err)
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as is a tiny local errors.As to avoid importing the standard "errors"
// package under the same name as this package.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsRetryable reports whether err is a retryable structured error.
func IsRetryable(err error) bool {
	var e *Error
	if as(err, &e) {
		return e.Retryable
	}
	return false
}

// IsFatal reports whether err is a fatal structured error (e.g. SchemaMismatch).
func IsFatal(err error) bool {
	var e *Error
	if as(err, &e) {
		return e.Severity == SeverityFatal
	}
	return false
}

// GetKind extracts the Kind from err, or "" if err is not a *Error.
func GetKind(err error) Kind {
	var e *Error
	if as(err, &e) {
		return e.Kind
	}
	return ""
}
