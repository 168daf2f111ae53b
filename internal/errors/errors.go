// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a required upstream dependency could not serve the request.
	ErrUnavailable = errors.New("unavailable")
)

// Envelope encryption and access control failures. Each one is terminal for the
// current operation and maps to a distinct caller-visible error code.
var (
	// ErrTokenInvalid indicates the bearer token failed signature, issuer, audience,
	// or validity window checks. The specific failed check is never disclosed.
	ErrTokenInvalid = Wrap(ErrUnauthorized, "token invalid")

	// ErrInsufficientScope indicates the caller lacks a required capability scope.
	ErrInsufficientScope = Wrap(ErrForbidden, "insufficient scope")

	// ErrCrossTenantDenied indicates the caller's tenant differs from the target tenant.
	ErrCrossTenantDenied = Wrap(ErrForbidden, "cross-tenant denied")

	// ErrKeyServiceUnavailable indicates a KMS wrap or unwrap call failed.
	// It is the only failure a caller may reasonably retry.
	ErrKeyServiceUnavailable = Wrap(ErrUnavailable, "key service unavailable")

	// ErrAuthenticationFailure indicates the ciphertext, tag, or associated data did
	// not authenticate during decryption.
	ErrAuthenticationFailure = Wrap(ErrInvalidInput, "authentication failure")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message while preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
