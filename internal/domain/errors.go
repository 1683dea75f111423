package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// WildcardField is the pseudo-field for validation errors that have no single
// owning input field (e.g. aggregate amount mismatches). The presentation
// layer renders them as form-level messages.
const WildcardField = "*"

// FieldError describes a validation error for a specific field.
// Code is a stable machine-readable identifier such as "duplicated" or
// "bad-total-amount"; the presentation layer owns the human-readable text.
type FieldError struct {
	Field string
	Code  string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Code)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, code string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Code: code}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
