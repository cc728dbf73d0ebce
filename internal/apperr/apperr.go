// Package apperr classifies domain failures so the HTTP layer can map them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindPaymentFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindPaymentFailed:
		return "payment_failed"
	default:
		return "internal"
	}
}

// Error carries a client-safe message together with the domain sentinel it wraps.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid marks err as a validation failure of field.
func Invalid(err error, field string) error {
	return &Error{Kind: KindValidation, Field: field, Message: err.Error(), Err: err}
}

// Invalidf builds a validation failure wrapping sentinel with a formatted message.
func Invalidf(sentinel error, field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// NotFound reports that the resource identified by id does not resolve.
func NotFound(sentinel error, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s: %s", sentinel.Error(), id), Err: sentinel}
}

func Conflict(err error) error {
	return &Error{Kind: KindConflict, Message: err.Error(), Err: err}
}

func Unauthorized(err error) error {
	return &Error{Kind: KindUnauthorized, Message: err.Error(), Err: err}
}

func Forbidden(err error) error {
	return &Error{Kind: KindForbidden, Message: err.Error(), Err: err}
}

func PaymentFailed(err error) error {
	return &Error{Kind: KindPaymentFailed, Message: err.Error(), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the client-safe message of err, or fallback when err is not classified.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}
