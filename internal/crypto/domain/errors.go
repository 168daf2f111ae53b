package domain

import (
	"github.com/allisson/sealed/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so the
// HTTP layer can map them without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a DEK is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates the AEAD open operation failed.
	//
	// The cause (wrong key, tampered ciphertext or tag, mismatched associated
	// data, malformed nonce) is deliberately not disclosed.
	ErrDecryptionFailed = errors.ErrAuthenticationFailure

	// ErrKeyServiceUnavailable indicates the KMS could not wrap or unwrap a DEK.
	ErrKeyServiceUnavailable = errors.ErrKeyServiceUnavailable
)
