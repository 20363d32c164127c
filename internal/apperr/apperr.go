// Package apperr defines the error kinds surfaced at the HTTP boundary.
//
// Repositories keep returning plain sentinel errors; services translate them
// into an *Error carrying a Kind and a stable, machine-checkable reason.
package apperr

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindForbidden
	KindUnauthorized
	KindNotFound
	KindValidation
	KindConflict
	KindExternal
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external_service_error"
	case KindSignature:
		return "signature_invalid"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the response code used by the handlers.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind   Kind
	Reason string
	Msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Reason + ": " + e.Msg + ": " + e.cause.Error()
	}
	return e.Reason + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, reason, msg string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Reason: reason, Msg: msg}, 1)
}

func Wrap(kind Kind, reason string, cause error, msg string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Reason: reason, Msg: msg, cause: cause}, 1)
}

// Shorthands for the common kinds.

func Forbidden(msg string) error { return New(KindForbidden, "forbidden", msg) }

func NotFound(reason, msg string) error { return New(KindNotFound, reason, msg) }

func Validation(reason, msg string) error { return New(KindValidation, reason, msg) }

func Conflict(reason, msg string) error { return New(KindConflict, reason, msg) }

func Internal(cause error, msg string) error { return Wrap(KindInternal, "internal", cause, msg) }

func External(cause error, msg string) error {
	return Wrap(KindExternal, "payment_provider_error", cause, msg)
}

// From returns the *Error in err's chain, if any.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports KindInternal for errors that never went through this package.
func KindOf(err error) Kind {
	if ae, ok := From(err); ok {
		return ae.Kind
	}
	return KindInternal
}

func ReasonOf(err error) string {
	if ae, ok := From(err); ok {
		return ae.Reason
	}
	return "internal"
}
