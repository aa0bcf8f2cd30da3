package invoicing

import "github.com/TOPOSV/Fakturace/internal/domain/shared"

// Error codes specific to the invoicing domain. General codes (NOT_FOUND,
// CONCURRENCY_CONFLICT, ...) live in the shared package.
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeAlreadyConverted       = "ALREADY_CONVERTED"
	ErrCodeDuplicateNumber        = "DUPLICATE_NUMBER"
	ErrCodeLinkedEntity           = "LINKED_ENTITY"
)

// NewValidationError creates a validation error for malformed invoice input
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeValidation, message)
}

// NewInvalidStateTransitionError creates an error for an illegal status change
func NewInvalidStateTransitionError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidStateTransition, message)
}

// Sentinel errors for conversion and deletion guards
var (
	ErrAlreadyConverted = shared.NewDomainError(ErrCodeAlreadyConverted, "Advance invoice has already been converted")
	ErrDuplicateNumber  = shared.NewDomainError(ErrCodeDuplicateNumber, "Invoice number already exists")
	ErrLinkedEntity     = shared.NewDomainError(ErrCodeLinkedEntity, "Invoice is referenced by another invoice and cannot be deleted")
)
