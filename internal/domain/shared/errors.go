package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinel comparisons with errors.Is
// work for freshly constructed errors carrying the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Error codes shared across the domain and the HTTP error mapping.
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeAlreadyRefunded     = "ALREADY_REFUNDED"
	ErrCodeUntrackedStock      = "UNTRACKED_STOCK"
	ErrCodeStorage             = "STORAGE_ERROR"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(ErrCodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(ErrCodeInvalidInput, "Invalid input provided")
	ErrValidation          = NewDomainError(ErrCodeValidation, "Request validation failed")
	ErrInvalidState        = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
	ErrAlreadyRefunded     = NewDomainError(ErrCodeAlreadyRefunded, "Order has already been refunded")
	ErrUntrackedStock      = NewDomainError(ErrCodeUntrackedStock, "No inventory is tracked for this branch and ingredient")
	ErrStorage             = NewDomainError(ErrCodeStorage, "Persistence operation failed")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Resource was modified by another process")
)
