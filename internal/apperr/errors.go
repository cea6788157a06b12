// Package apperr defines the error taxonomy shared by services and the REST
// boundary. Services return these; the boundary maps them to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindPersistence
)

// Error is a classified application error
type Error struct {
	Kind    Kind
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

// Validation reports a missing or malformed field (HTTP 400)
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authentication reports a missing or invalid session (HTTP 401)
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization reports insufficient rights on a valid session (HTTP 403)
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound reports a missing referenced document (HTTP 404)
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict reports a concurrent mutation or illegal state transition
// (HTTP 409); safe to retry once.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Persistence wraps an underlying storage failure (HTTP 500)
func Persistence(err error, message string) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf extracts the kind of a classified error
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Status maps an error to its HTTP status code; unclassified errors are 500
func Status(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for an error. Persistence causes
// and unclassified errors are not leaked to callers.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindPersistence {
		return e.Message
	}
	return "Server error"
}
