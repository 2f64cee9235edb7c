package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies domain failures so callers can map them to responses
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindInsufficientPoints     ErrorKind = "INSUFFICIENT_POINTS"
	KindDuplicateIdentity      ErrorKind = "DUPLICATE_IDENTITY"
	KindInvalidOperation       ErrorKind = "INVALID_OPERATION"
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindInvalidCredentials     ErrorKind = "INVALID_CREDENTIALS"
)

// Error is a domain failure with a human-readable message
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock}
	ErrInsufficientPoints     = &Error{Kind: KindInsufficientPoints}
	ErrDuplicateIdentity      = &Error{Kind: KindDuplicateIdentity}
	ErrInvalidOperation       = &Error{Kind: KindInvalidOperation}
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInvalidCredentials     = &Error{Kind: KindInvalidCredentials}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id uint) *Error {
	return newError(KindNotFound, "%s not found with id: %d", entity, id)
}

// lookupError turns gorm.ErrRecordNotFound into a NotFound error and wraps anything else
func lookupError(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", strings.ToLower(entity), id, err)
}

// isUniqueViolation works with both PostgreSQL and SQLite error messages
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
