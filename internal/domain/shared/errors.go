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

// Is matches domain errors by code so that errors built with NewDomainError
// compare equal to the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Storage errors. These are surfaced unchanged to callers; nothing in the
// persistence layer retries or recovers from them.
var (
	// ErrConstraintViolation covers unique and not-null violations.
	ErrConstraintViolation = NewDomainError("CONSTRAINT_VIOLATION", "Constraint violation")
	// ErrReferentialIntegrityViolation covers a missing parent row and a
	// delete blocked by existing children.
	ErrReferentialIntegrityViolation = NewDomainError("REFERENTIAL_INTEGRITY_VIOLATION", "Referential integrity violation")
	// ErrConnection is returned when the storage engine cannot be reached.
	ErrConnection = NewDomainError("CONNECTION_ERROR", "Unable to reach the database")
)
