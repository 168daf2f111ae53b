package service

import (
	"github.com/allisson/sealed/internal/errors"
)

var (
	// ErrKeyNotFound indicates no verification key exists for the token's key identifier.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "verification key not found")

	// ErrKeySetUnavailable indicates the published key set could not be fetched.
	ErrKeySetUnavailable = errors.Wrap(errors.ErrUnavailable, "key set unavailable")
)
