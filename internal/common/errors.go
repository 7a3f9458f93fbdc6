// Package common holds sentinel errors and metadata keys shared by the
// storage, service and transport layers. Match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInvalidInput     = errors.New("invalid input")
	ErrorExpired          = errors.New("expired")
	ErrorStoreUnavailable = errors.New("store unavailable")
)

// ValidationError names the offending field of a rejected request.
// It always matches ErrorInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrorInvalidInput
}
