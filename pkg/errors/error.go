// Package errors provides the structured error taxonomy shared by every
// gateway component.
//
// Each error carries a Kind from a closed set, a human-readable message,
// and an optional wrapped cause:
//   - KindValidation: caller-supplied input violates a contract
//   - KindDataProvider: the market data source returned no usable data
//   - KindBrokerConnection: the brokerage backend is unreachable or misconfigured
//   - KindAuthorization: credentials rejected (HTTP 401/403 equivalent)
//   - KindMarketCondition: the market or instrument cannot accept the order right now
//   - KindCompliance: the order violates a policy or regulatory rule
//   - KindAPI: catch-all for any other unexpected failure
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.KindValidation, "ticker is required")
//
//	// Create a formatted error
//	err := errors.Newf(errors.KindDataProvider, "no market data for %s", ticker)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.KindBrokerConnection, "order submission failed", originalErr)
//
//	// Check error kind
//	if errors.HasKind(err, errors.KindValidation) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with a taxonomy kind and message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New creates a new Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given kind and formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given kind and message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given kind and formatted message.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Ensure re-wraps err only if it does not already carry a taxonomy kind.
// Known kinds propagate unchanged; anything else becomes a KindAPI error
// with the original cause preserved.
func Ensure(err error, message string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Kind:    KindAPI,
		Message: message,
		Cause:   err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// KindOf extracts the Kind from an error if it's an *Error type.
// Returns KindAPI if the error is not an *Error type.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindAPI
}

// HasKind checks if an error has a specific Kind.
func HasKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
