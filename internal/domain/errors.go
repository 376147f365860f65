package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConversion    = "CONVERSION_ERROR"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Conversion errors. Terminal for the file in question: the original bytes
// are preserved on disk and no retry is attempted.
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeConversion, "unsupported file type")
	ErrFileConversion      = NewDomainError(ErrCodeConversion, "failed to convert file")
)

// Not found errors
var (
	ErrProjectNotFound  = NewDomainError(ErrCodeNotFound, "project not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// ErrRetrievalDisabled is returned by retrieval operations when no
// embedding provider is configured.
var ErrRetrievalDisabled = NewDomainError(ErrCodeProvider, "retrieval is not configured")

// Validation errors
var (
	ErrInvalidAssumptionType   = NewDomainError(ErrCodeValidation, "invalid assumption type")
	ErrInvalidAssumptionStatus = NewDomainError(ErrCodeValidation, "invalid assumption status")
	ErrInvalidConfidence       = NewDomainError(ErrCodeValidation, "invalid confidence level")
	ErrInvalidImpact           = NewDomainError(ErrCodeValidation, "invalid impact level")
	ErrMissingRequiredField    = NewDomainError(ErrCodeValidation, "missing required field")
)

// ConversionError creates a CONVERSION_ERROR wrapping the parser failure.
func ConversionError(filename string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeConversion, fmt.Sprintf("failed to convert %q", filename), err)
}
