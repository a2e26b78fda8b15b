// Package apperror classifies failures so the HTTP layer can pick a status
// code without knowing which service produced the error.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindMethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "storage"
	}
}

// Error is a classified error with a client-facing message. Err, when set,
// is the underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) ErrorKind() Kind { return e.Kind }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }
func MethodNotAllowed(msg string) *Error { return &Error{Kind: KindMethodNotAllowed, Message: msg} }

// Storage wraps a connectivity or transaction failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

type kinded interface {
	ErrorKind() Kind
}

// KindOf reports the kind of the first classified error in err's chain.
// Unclassified errors are treated as storage failures.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindStorage
}

// Message returns the client-facing message of err. Storage failures get a
// generic message so driver details stay in the logs.
func Message(err error) string {
	if KindOf(err) == KindStorage {
		return "Internal server error"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
