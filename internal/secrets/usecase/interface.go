// Package usecase orchestrates storing and revealing sealed secrets: it applies
// the authorization guard, runs envelope encryption and KMS key wrapping, and
// persists the opaque record.
package usecase

import (
	"context"

	"github.com/google/uuid"

	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// SecretRepository defines the interface for SecretRecord persistence operations.
type SecretRepository interface {
	// Create inserts a complete record in a single statement.
	Create(ctx context.Context, record *secretsDomain.SecretRecord) error
	// Get returns ErrSecretNotFound when no record has the given ID.
	Get(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error)
}

// SecretUseCase defines the secret operations exposed to callers.
// The caller identity is read from ctx.
type SecretUseCase interface {
	StoreSecret(ctx context.Context, tenantID, ownerID string, plaintext []byte) (*secretsDomain.SecretMeta, error)
	GetSecretMeta(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretMeta, error)
	// RevealSecret decrypts a secret.
	//
	// Security Note: callers MUST zero the returned plaintext after use with cryptoDomain.Zero.
	RevealSecret(ctx context.Context, id uuid.UUID) ([]byte, error)
}
