package system

import (
	"errors"
	"fmt"
)

// ErrorKind classifies facade failures
type ErrorKind int

const (
	// KindNotFound covers metrics read through dynamic system introspection
	KindNotFound ErrorKind = iota + 1
	// KindBadRequest covers metrics that depend on host configuration or identity
	KindBadRequest
	// KindIO covers failures of the CPU load sampler
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindIO:
		return "io"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the only error type returned by Stats. It carries the provider's
// message as plain text.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound creates a KindNotFound error from a provider failure
func NotFound(err error) *Error {
	return &Error{Kind: KindNotFound, Message: err.Error()}
}

// BadRequest creates a KindBadRequest error from a provider failure
func BadRequest(err error) *Error {
	return &Error{Kind: KindBadRequest, Message: err.Error()}
}

// IOError creates a KindIO error from a provider failure
func IOError(err error) *Error {
	return &Error{Kind: KindIO, Message: err.Error()}
}

// KindOf reports the kind of err, or zero if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
