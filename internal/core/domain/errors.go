package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrMissingToken             = errors.New("missing authentication token")
	ErrInvalidToken             = errors.New("invalid token")
	ErrForbidden                = errors.New("access forbidden")
	ErrAccountNotFound          = errors.New("account not found")
	ErrDuplicateAccount         = errors.New("account already exists with this email or employee id")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrManagerCycle             = errors.New("manager assignment would create a reporting cycle")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field failures. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
