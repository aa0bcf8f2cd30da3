package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across domains
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(ErrCodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(ErrCodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
)
