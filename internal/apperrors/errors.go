// Package apperrors defines the domain error taxonomy. Services return these
// typed errors and the HTTP layer maps each kind to a fixed status code.
package apperrors

import (
	"errors"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindForbidden
	KindInsufficientFunds
	KindValidation
)

// Error is a domain error carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func InsufficientFunds(message string) error {
	return &Error{Kind: KindInsufficientFunds, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf reports the kind of err if it is a domain error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
