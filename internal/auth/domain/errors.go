package domain

import (
	"github.com/allisson/sealed/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrTokenInvalid indicates the bearer token failed verification or no identity is present.
	ErrTokenInvalid = errors.ErrTokenInvalid

	// ErrInsufficientScope indicates the identity lacks a required scope.
	ErrInsufficientScope = errors.ErrInsufficientScope

	// ErrCrossTenantDenied indicates the identity tried to act on another tenant's data.
	ErrCrossTenantDenied = errors.ErrCrossTenantDenied
)
