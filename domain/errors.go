package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrCustomerNotFound = NewError(ErrCodeNotFound, "customer not found")
	ErrConflictNotFound = NewError(ErrCodeNotFound, "conflict not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")

	// ErrInvalidPhone marks a row whose phone cannot be normalized. The row is
	// dropped and reported; the batch keeps going.
	ErrInvalidPhone = NewError(ErrCodeInvalid, "phone cannot be normalized")

	// ErrMissingPhoneColumn rejects a whole file import at mapping time: the
	// phone is the join key and cannot be inferred without a column for it.
	ErrMissingPhoneColumn = NewError(ErrCodeInvalid, "no phone column in header row")

	ErrInvalidThresholds = NewError(ErrCodeInvalid, "at-risk days must exceed active days, both positive")
	ErrConflictNotReady  = NewError(ErrCodeConflict, "conflict is not the one currently presented")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
