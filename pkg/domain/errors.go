package domain

import (
	"errors"
	"fmt"
)

// Sentinel error categories. Every DomainError wraps exactly one of them so callers
// can branch with errors.Is and the HTTP layer can pick a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state transition")
	ErrUpstream     = errors.New("upstream failure")
)

// Generic error codes used when a more specific code is not supplied.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION_FAILED"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeUpstream     = "UPSTREAM_ERROR"
)

// DomainError is a structured business error with a machine-readable code.
type DomainError struct {
	Err     error
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New builds a DomainError in the given category.
func New(category error, code, message string) *DomainError {
	return &DomainError{Err: category, Code: code, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return New(ErrNotFound, CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewForbiddenError reports an actor without rights over the operation.
func NewForbiddenError(message string) *DomainError {
	return New(ErrForbidden, CodeForbidden, message)
}

// NewUnauthorizedError reports a failed authentication.
func NewUnauthorizedError(code, message string) *DomainError {
	return New(ErrUnauthorized, code, message)
}

// NewValidationError reports rejected input.
func NewValidationError(code, message string) *DomainError {
	return New(ErrValidation, code, message)
}

// NewConflictError reports a request that collides with current state.
func NewConflictError(message string) *DomainError {
	return New(ErrConflict, CodeConflict, message)
}

// NewInvalidStateError reports a disallowed state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return New(ErrInvalidState, CodeInvalidState, fmt.Sprintf("cannot transition from %s to %s", from, to))
}

// NewUpstreamError reports a failure of an external collaborator.
func NewUpstreamError(code, message string) *DomainError {
	return New(ErrUpstream, code, message)
}

// CodeOf returns the code of err if it is a DomainError, or "" otherwise.
func CodeOf(err error) string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code
	}
	return ""
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}
