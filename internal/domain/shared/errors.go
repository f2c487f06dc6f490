package shared

import "errors"

// Error codes grouping domain failures into the categories the interface
// layer maps onto HTTP statuses. Every failure raised by the core carries
// exactly one of these codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBusinessRule       = "BUSINESS_RULE_VIOLATION"
	CodeNotFound           = "NOT_FOUND"
	CodeOptimisticLock     = "OPTIMISTIC_LOCK_CONFLICT"
	CodeAllocation         = "ALLOCATION_ERROR"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidState       = "INVALID_STATE"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeCurrencyMismatch   = "CURRENCY_MISMATCH"
	CodeUnqualifiedParty   = "UNQUALIFIED_PARTY"
	CodeImmutableField     = "IMMUTABLE_FIELD"
	CodeExceedsOutstanding = "EXCEEDS_OUTSTANDING"
)

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

// NewValidationError creates a validation failure (rejected before any state is touched)
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewBusinessRuleViolation creates a business rule failure (guard rejected the operation)
func NewBusinessRuleViolation(message string) *DomainError {
	return NewDomainError(CodeBusinessRule, message)
}

// NewAllocationError creates an allocation failure (weights or amounts do not
// sum exactly to the required total)
func NewAllocationError(message string) *DomainError {
	return NewDomainError(CodeAllocation, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(CodeOptimisticLock, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// CodeOf returns the domain error code for err, or an empty string when err
// is not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is a resource-not-found domain error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsBusinessRuleViolation reports whether err rejects an operation for
// violating a business rule or a lifecycle transition guard.
func IsBusinessRuleViolation(err error) bool {
	switch CodeOf(err) {
	case CodeBusinessRule, CodeInvalidState, CodeUnqualifiedParty,
		CodeImmutableField, CodeExceedsOutstanding, CodeInsufficientFunds:
		return true
	}
	return false
}

// IsOptimisticLockConflict reports whether err is a version conflict on write.
func IsOptimisticLockConflict(err error) bool {
	return CodeOf(err) == CodeOptimisticLock
}

// IsAllocationError reports whether err is an allocation-exactness failure.
func IsAllocationError(err error) bool {
	return CodeOf(err) == CodeAllocation
}

// IsValidationError reports whether err is a malformed-input failure.
func IsValidationError(err error) bool {
	return CodeOf(err) == CodeValidation
}
