// Package apperr is the error taxonomy shared by every service boundary.
//
// Internal helpers return plain or sentinel errors; only the boundary (app
// services and HTTP handlers) wraps them into an *Error so that each failure
// maps to exactly one HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
)

// Code returns the stable machine-checkable code used in error bodies.
func (k Kind) Code() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the cause and is only logged.
type Error struct {
	Kind       Kind
	Message    string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// ConstraintViolation is an Internal failure caused by a storage constraint
// the business logic did not anticipate. The constraint name is exposed so
// callers can report it as a bug.
func ConstraintViolation(constraint string, err error) *Error {
	return &Error{
		Kind:       KindInternal,
		Message:    "constraint violation",
		Constraint: constraint,
		Err:        err,
	}
}

// As extracts an *Error from err. Unclassified errors become Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal Server Error", err)
}

// KindOf reports the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	return As(err).Kind
}

// HTTPStatus maps err to its HTTP status.
func HTTPStatus(err error) int {
	return KindOf(err).Status()
}
