// Package apperr models the error-kind taxonomy every component maps to
// an HTTP status and a bus-retry decision.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error categories the system distinguishes.
type Kind string

const (
	// Transient is a network blip or a broker redelivery hint; retry
	// with backoff.
	Transient Kind = "transient"
	// Timeout means a collaborator was too slow; degrade where the
	// caller documents a fallback, otherwise surface it.
	Timeout Kind = "timeout"
	// NotFound is a missing session/user: 404 on HTTP, dropped with a
	// warning in workers.
	NotFound Kind = "not_found"
	// Conflict is an idempotent no-op (e.g. redelivery of an
	// already-applied turn).
	Conflict Kind = "conflict"
	// Validation is a caller error: 400.
	Validation Kind = "validation"
	// Upstream is an LLM or store failure: 502 on HTTP, dead-letter
	// after retries on the bus.
	Upstream Kind = "upstream"
	// Fatal is a misconfiguration: crash fast, let the orchestrator
	// restart.
	Fatal Kind = "fatal"
)

// Error is a typed error carrying one Kind plus the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind of err, defaulting to Upstream for untyped
// errors — an unrecognized failure from a collaborator is treated as the
// most conservative "do not silently succeed" category.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Upstream
}

// HTTPStatus maps a Kind to the status code an HTTP-facing component
// should return.
func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Timeout:
		return http.StatusGatewayTimeout
	case Upstream:
		return http.StatusBadGateway
	case Transient:
		return http.StatusServiceUnavailable
	case Fatal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a bus consumer should retry/nack (true) or
// ack-and-drop (false) a message that failed with this kind.
func Retryable(kind Kind) bool {
	switch kind {
	case Transient, Upstream:
		return true
	default:
		return false
	}
}
