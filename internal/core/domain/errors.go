package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "HM-TOKEN-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	// ErrTokenNotFound indicates no record exists for the token id.
	// Callers treat it as an expected outcome, not a failure.
	ErrTokenNotFound = NewDomainError("HM-TOKEN-4040", "honeytoken not found")

	// ErrRecordMalformed indicates a stored value could not be decoded.
	ErrRecordMalformed = NewDomainError("HM-STORE-5001", "malformed honeytoken record")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = NewDomainError("HM-STORE-5030", "token store unavailable")

	// ErrStoreConflict indicates an atomic update lost every retry to concurrent writers.
	ErrStoreConflict = NewDomainError("HM-STORE-4090", "concurrent update conflict")

	// ErrPublishFailed indicates an alert could not be broadcast.
	ErrPublishFailed = NewDomainError("HM-ALERT-5000", "alert publish failed")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("HM-ARG-1001", "invalid argument")
)
