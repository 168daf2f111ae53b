// Package service verifies bearer tokens issued by the external identity
// provider and resolves their signing keys from a published key set.
package service

import (
	"context"
	"time"

	"github.com/go-jose/go-jose/v4"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
)

// KeySet resolves token verification keys by key identifier.
type KeySet interface {
	// LookupKey returns the public key for kid or ErrKeyNotFound.
	LookupKey(ctx context.Context, kid string) (*jose.JSONWebKey, error)
}

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	// Verify checks signature, issuer, audience and validity window at now.
	// Every failure is reported as ErrTokenInvalid.
	Verify(ctx context.Context, token string, now time.Time) (*authDomain.Identity, error)
}
