// Package apperr defines the service-wide error taxonomy. Handlers map each
// Kind to an HTTP status; services never let raw store or engine errors reach
// the transport layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure in a machine-checkable way.
type Kind int

const (
	Internal Kind = iota
	Conflict
	NotFound
	Unauthorized
	Validation
)

// String returns the wire-friendly name of the kind.
func (k Kind) String() string {
	switch k {
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Validation:
		return "validation"
	default:
		return "internal"
	}
}

// Error carries a kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return New(Conflict, format, args...)
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}

// Unauthorizedf builds an Unauthorized error.
func Unauthorizedf(format string, args ...interface{}) *Error {
	return New(Unauthorized, format, args...)
}

// Internalf builds an Internal error.
func Internalf(format string, args ...interface{}) *Error {
	return New(Internal, format, args...)
}

// KindOf reports the kind of err, or Internal for anything outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
