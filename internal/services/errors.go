package services

import (
	"errors"
)

type ErrorKind int

const (
	InvalidArgument ErrorKind = iota + 1
	InvalidOperation
	Unauthorized
	NotFound
	PersistenceFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidOperation:
		return "invalid_operation"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case PersistenceFailure:
		return "persistence_failure"
	}
	return "unknown"
}

// Error is a failure meant to be shown to the caller. Anything else returned
// by a service is internal.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a service error, or 0 for internal errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}
