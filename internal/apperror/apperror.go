// Package apperror defines the error kinds that cross the use-case boundary.
// Handlers translate a Kind into an HTTP status; the Message is always safe to
// show to a client while the wrapped Err keeps the technical cause for logs.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindCreation
	KindUpdate
	KindBadRequest
	KindTooManyRequests
)

// Error is the single error type returned by use-cases.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string // per-field messages, validation only
	Err     error               // underlying cause, never rendered to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthenticated(message string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message, Err: err}
}

// Forbidden is kept for completeness; scoped lookups report NotFound instead.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Creation(message string, err error) *Error {
	return &Error{Kind: KindCreation, Message: message, Err: err}
}

func Update(message string, err error) *Error {
	return &Error{Kind: KindUpdate, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}
