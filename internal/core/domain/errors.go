// Package domain defines the core domain models for DynBind.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a binding-runtime error with a structured error code.
//
// Subject names the var or namespace the failure is about (for example
// "#'user/x") and Value carries the offending value for validation failures.
type DomainError struct {
	Code    string // Error code (e.g., "DB-VAR-4040")
	Message string // Human-readable message
	Subject string // Identity of the var/namespace involved (optional)
	Details string // Optional additional details
	Value   any    // Rejected value (validation failures only)
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
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

func (e *DomainError) clone() *DomainError {
	c := *e
	return &c
}

// WithSubject returns a copy of the error naming the var or namespace involved.
func (e *DomainError) WithSubject(subject string) *DomainError {
	c := e.clone()
	c.Subject = subject
	return c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := e.clone()
	c.Details = details
	return c
}

// WithValue returns a copy of the error carrying the offending value.
func (e *DomainError) WithValue(v any) *DomainError {
	c := e.clone()
	c.Value = v
	return c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
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

// RejectedValue extracts the rejected value from a validation failure.
// The boolean is false if err is not a validation DomainError.
func RejectedValue(err error) (any, bool) {
	var de *DomainError
	if errors.As(err, &de) && de.Code == ErrValidation.Code {
		return de.Value, true
	}
	return nil, false
}

// ============================================================================
// Var Errors (VAR)
// ============================================================================

var (
	// ErrUnbound indicates a read of a var with neither a thread binding nor a root.
	ErrUnbound = NewDomainError("DB-VAR-4040", "var is unbound")

	// ErrNoThreadBinding indicates Set was called without an active thread binding.
	ErrNoThreadBinding = NewDomainError("DB-VAR-4090", "can't change/establish root binding with set")

	// ErrValidation indicates a candidate value was rejected by the var's validator.
	ErrValidation = NewDomainError("DB-VAR-4001", "invalid reference state")

	// ErrNotCallable indicates the var's current value cannot be invoked.
	ErrNotCallable = NewDomainError("DB-VAR-4050", "value is not callable")
)

// ============================================================================
// Thread Errors (THRD)
// ============================================================================

var (
	// ErrStackUnderflow indicates a pop or release without a matching push.
	ErrStackUnderflow = NewDomainError("DB-THRD-4091", "binding stack underflow")
)

// ============================================================================
// Namespace Errors (NS)
// ============================================================================

var (
	// ErrLookup indicates a namespace or var could not be resolved.
	ErrLookup = NewDomainError("DB-NS-4040", "lookup failed")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("DB-ARG-1001", "invalid argument")
)
