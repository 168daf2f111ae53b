package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// EnvelopeService implements EnvelopeEngine on top of an AEADManager.
//
// It never logs or stores the DEK or plaintext; callers own the DEK and must
// zero it with cryptoDomain.Zero once the operation is finished.
type EnvelopeService struct {
	aeadManager AEADManager
}

// NewEnvelopeEngine creates a new EnvelopeService.
func NewEnvelopeEngine(aeadManager AEADManager) *EnvelopeService {
	return &EnvelopeService{aeadManager: aeadManager}
}

// GenerateDEK returns a fresh 32-byte key from crypto/rand.
func (e *EnvelopeService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, cryptoDomain.DEKSize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate DEK: %w", err)
	}
	return dek, nil
}

// Encrypt seals plaintext with dek, binding the identity tuple as associated data.
func (e *EnvelopeService) Encrypt(
	dek, plaintext []byte,
	aad cryptoDomain.IdentityTuple,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.SealedPayload, error) {
	cipher, err := e.aeadManager.CreateCipher(dek, alg)
	if err != nil {
		return cryptoDomain.SealedPayload{}, err
	}

	iv, ciphertext, tag, err := cipher.Seal(plaintext, aad.Bytes())
	if err != nil {
		return cryptoDomain.SealedPayload{}, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	return cryptoDomain.SealedPayload{
		IV:         iv,
		Ciphertext: ciphertext,
		Tag:        tag,
	}, nil
}

// Decrypt opens a sealed payload. It fails closed with ErrAuthenticationFailure
// on any mismatch in ciphertext, tag, or associated data.
func (e *EnvelopeService) Decrypt(
	dek []byte,
	alg cryptoDomain.Algorithm,
	sealed cryptoDomain.SealedPayload,
	aad cryptoDomain.IdentityTuple,
) ([]byte, error) {
	if len(sealed.IV) != cryptoDomain.IVSize || len(sealed.Tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	cipher, err := e.aeadManager.CreateCipher(dek, alg)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Open(sealed.IV, sealed.Ciphertext, sealed.Tag, aad.Bytes())
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
