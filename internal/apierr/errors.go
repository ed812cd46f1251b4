// Package apierr defines the error taxonomy shared by every subsystem of
// iamcore: validation failures, lookups misses, conflicts, authentication
// and authorization outcomes, resource-in-use rejections, transient storage
// failures, and internal invariant violations.
package apierr

import (
	"errors"
	"fmt"
)

// Kind tags an error with its stable, caller-visible category.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization_denied"
	KindResourceInUse  Kind = "resource_in_use"
	KindTransient      Kind = "transient"
	KindInternal       Kind = "internal"
)

// Error is the concrete type every taxonomy member implements.
type Error struct {
	Kind    Kind
	Message string
	Path    string // optional, e.g. "Statement[2].Effect" for validation errors
	err     error  // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so callers can
// use errors.Is(err, apierr.NotFound) style sentinels below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Sentinels for use with errors.Is against a bare Kind check.
var (
	NotFound            = newErr(KindNotFound, "not found")
	Conflict            = newErr(KindConflict, "conflict")
	Authentication      = newErr(KindAuthentication, "authentication failed")
	AuthorizationDenied = newErr(KindAuthorization, "authorization denied")
	ResourceInUse       = newErr(KindResourceInUse, "resource in use")
	Transient           = newErr(KindTransient, "transient failure")
	Internal            = newErr(KindInternal, "internal error")
	Validation          = newErr(KindValidation, "validation failed")
)

// Validationf builds a validation error with a human-readable path, e.g.
// "Statement[2].Effect".
func Validationf(path, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Path: path}
}

// NotFoundf builds a not-found error for a named entity/id pair.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error, e.g. a duplicate-name violation.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Authenticationf builds an authentication error. Never include the secret
// or token value in the message.
func Authenticationf(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

// ResourceInUsef builds a resource-in-use error, optionally carrying the
// attachment count in the message.
func ResourceInUsef(format string, args ...any) *Error {
	return &Error{Kind: KindResourceInUse, Message: fmt.Sprintf(format, args...)}
}

// Transientf wraps a transient storage/infra failure after retries exhaust.
func Transientf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf(format, args...), err: cause}
}

// Internalf wraps an unexpected invariant violation. The caller-visible
// message should stay generic; log the wrapped cause with its stack
// separately.
func Internalf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), err: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
