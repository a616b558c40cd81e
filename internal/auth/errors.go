package auth

import (
	"errors"
	"net/http"
)

// Kind enumerates the authentication failure outcomes.
type Kind int

const (
	KindInvalidCredentials Kind = iota + 1
	KindTokenExpired
	KindTokenInvalid
	KindUserNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenExpired:
		return "token_expired"
	case KindTokenInvalid:
		return "token_invalid"
	case KindUserNotFound:
		return "user_not_found"
	default:
		return "unknown"
	}
}

// Error is an authentication failure. Every kind maps to 401; Message
// is the catalog key of the response text.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// StatusCode implements apperror.Coded.
func (e *Error) StatusCode() int { return http.StatusUnauthorized }

// MessageKey implements apperror.Coded.
func (e *Error) MessageKey() string { return e.Message }

// MessageArgs implements apperror.Coded.
func (e *Error) MessageArgs() []any { return nil }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so responses do not reveal which accounts exist.
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired, Message: "Token has expired"}
	// ErrTokenInvalid covers bad signatures, malformed tokens and
	// unsupported algorithms alike.
	ErrTokenInvalid = &Error{Kind: KindTokenInvalid, Message: "Invalid token"}
	ErrUserNotFound = &Error{Kind: KindUserNotFound, Message: "User not found"}
)

// KindOf returns the kind of an auth error, or 0 when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
