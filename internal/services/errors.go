package services

import (
	"errors"
	"sort"
	"strings"

	"job-board-api/internal/models"
)

// Define common service errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict") // e.g., duplicate email, already applied
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = models.ErrInvalidRole
	ErrInvalidResetToken  = errors.New("password reset token is invalid or has expired")
	ErrCredentialHash     = errors.New("credential hashing failed")
	ErrNotification       = errors.New("notification could not be delivered")
)

// ValidationError carries user facing messages per field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UserError is a sentinel paired with a message fit to show the user.
type UserError struct {
	Kind    error
	Message string
}

func userError(kind error, msg string) error {
	return &UserError{Kind: kind, Message: msg}
}

func (e *UserError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}
