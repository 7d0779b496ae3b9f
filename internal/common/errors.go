// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Commit errors.
	ErrNoRowsInScope = errors.New("no draft rows in scope")
	ErrUnreviewed    = errors.New("rows missing final category")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a commit precondition failure. It is surfaced to
// the user verbatim and always means the operation had no side effects.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error with a user-facing message.
func NewValidationError(message string, err error) error {
	return &ValidationError{Message: message, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DataIntegrityError reports a violated storage invariant, e.g. two active
// commits found for one scope. It is never auto-resolved; the operation
// aborts and the condition is logged for manual repair.
type DataIntegrityError struct {
	Err     error
	Message string
}

func (e *DataIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data integrity: %s: %v", e.Message, e.Err)
	}
	return "data integrity: " + e.Message
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}

// NewDataIntegrityError creates a data integrity error.
func NewDataIntegrityError(message string, err error) error {
	return &DataIntegrityError{Message: message, Err: err}
}

// IsDataIntegrity reports whether err is a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var de *DataIntegrityError
	return errors.As(err, &de)
}
