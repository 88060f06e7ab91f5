// Package apperr defines the failure kinds surfaced by the services and how
// each one is presented at the HTTP boundary.
package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindCapacity
	KindSend
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindCapacity:
		return "capacity"
	case KindSend:
		return "send"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is a failure with a kind and a message that is safe to show to clients.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CapacityError reports that an event cannot take the requested seats.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Only %d seats remaining", e.Remaining)
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Auth(msg string) error {
	return &Error{Kind: KindAuth, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Capacity(remaining int) error {
	return &CapacityError{Remaining: remaining}
}

func Send(err error) error {
	return &Error{Kind: KindSend, Msg: "failed to send email", Err: err}
}

func Transient(err error) error {
	return &Error{Kind: KindTransient, Msg: "service temporarily unavailable", Err: err}
}

func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal server error", Err: err}
}

// FromStore classifies an unexpected persistence failure as transient when it
// is a timeout or a broken connection, and as internal otherwise.
func FromStore(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return Transient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient(err)
	}

	return Internal(err)
}

func KindOf(err error) Kind {
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return KindCapacity
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// Message returns the client-facing text for err. Wrapped causes are never
// included.
func Message(err error) string {
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return capErr.Error()
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}

	return "internal server error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindCapacity:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindSend:
		return http.StatusBadGateway
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
