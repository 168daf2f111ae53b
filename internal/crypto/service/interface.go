// Package service provides cryptographic services for envelope encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) for sealing secret
// payloads with per-record DEKs, and key wrappers that hand DEKs to an external KMS.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
// The authentication tag is returned separately from the ciphertext.
type AEAD interface {
	// Seal encrypts plaintext under a fresh random nonce and binds aad.
	Seal(plaintext, aad []byte) (iv, ciphertext, tag []byte, err error)

	// Open authenticates and decrypts ciphertext. It returns no plaintext on failure.
	Open(iv, ciphertext, tag, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EnvelopeEngine seals and opens secret payloads with a DEK, binding the
// identity tuple as associated data.
type EnvelopeEngine interface {
	// GenerateDEK returns a fresh random 32-byte data encryption key.
	GenerateDEK() ([]byte, error)

	// Encrypt seals plaintext with dek and binds aad.
	Encrypt(
		dek, plaintext []byte,
		aad cryptoDomain.IdentityTuple,
		alg cryptoDomain.Algorithm,
	) (cryptoDomain.SealedPayload, error)

	// Decrypt opens a sealed payload. Any mismatch fails with ErrAuthenticationFailure.
	Decrypt(
		dek []byte,
		alg cryptoDomain.Algorithm,
		sealed cryptoDomain.SealedPayload,
		aad cryptoDomain.IdentityTuple,
	) ([]byte, error)
}

// KeyWrapper wraps and unwraps DEKs through an external key management service.
// Every failure to reach or use the KMS is reported as ErrKeyServiceUnavailable.
type KeyWrapper interface {
	// KeyID returns the name of the KMS key DEKs are wrapped under.
	KeyID() string

	// Wrap sends dek to the KMS and returns the wrapped blob and key version used.
	// Wrap is not idempotent and must not be retried blindly.
	Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error)

	// Unwrap returns the 32-byte DEK for a wrapped blob. Safe to retry.
	Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error)
}

// KMSKeeper is the subset of *secrets.Keeper used by KeeperWrapper.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
