// Package apperror defines errors that carry an HTTP status and a
// translatable message key for the response body.
package apperror

import (
	"fmt"
	"net/http"
)

// Coded is implemented by errors that map to a specific HTTP response.
// MessageKey is a catalog key; MessageArgs fill its format verbs.
type Coded interface {
	error
	StatusCode() int
	MessageKey() string
	MessageArgs() []any
}

// Error is the generic Coded error used outside the auth core.
type Error struct {
	Status int
	Key    string
	Args   []any
	// Detail is an optional structured payload rendered instead of the
	// message, e.g. per-field validation errors.
	Detail any
}

func (e *Error) Error() string {
	return fmt.Sprintf(e.Key, e.Args...)
}

// StatusCode implements Coded.
func (e *Error) StatusCode() int { return e.Status }

// MessageKey implements Coded.
func (e *Error) MessageKey() string { return e.Key }

// MessageArgs implements Coded.
func (e *Error) MessageArgs() []any { return e.Args }

// NotFound builds a 404 error.
func NotFound(key string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Key: key, Args: args}
}

// Unprocessable builds a 422 error.
func Unprocessable(key string, args ...any) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Key: key, Args: args}
}

// Validation wraps per-field validation errors in a 422.
func Validation(detail error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Key: "Validation error", Detail: detail}
}

// Unauthorized builds a 401 error.
func Unauthorized(key string, args ...any) *Error {
	return &Error{Status: http.StatusUnauthorized, Key: key, Args: args}
}
