package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM
// (Advanced Encryption Standard with Galois/Counter Mode).
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce (96 bits, randomly generated per encryption)
//   - 16-byte authentication tag (128 bits, returned separately)
//
// The cipher instance is stateless and safe for concurrent use from multiple
// goroutines. Each encryption operation generates a unique nonce independently.
//
// Example usage:
//
//	cipher, err := NewAESGCM(dek)
//	if err != nil {
//	    return err
//	}
//	iv, ciphertext, tag, err := cipher.Seal(plaintext, aad)
//	plaintext, err := cipher.Open(iv, ciphertext, tag, aad)
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
// The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.DEKSize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext using AES-256-GCM with the provided additional authenticated data.
//
// The AAD is authenticated but not encrypted, binding the ciphertext to its
// context. A unique 12-byte nonce is drawn from crypto/rand for every call.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	return sealAEAD(a.aead, plaintext, aad)
}

// Open verifies the tag and decrypts ciphertext. No plaintext is returned if
// verification fails.
func (a *AESGCMCipher) Open(iv, ciphertext, tag, aad []byte) ([]byte, error) {
	return openAEAD(a.aead, iv, ciphertext, tag, aad)
}

// sealAEAD draws a random nonce and seals plaintext, splitting off the tag.
func sealAEAD(aead cipher.AEAD, plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	iv = make([]byte, aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext, tag = sealWithNonce(aead, iv, plaintext, aad)
	return iv, ciphertext, tag, nil
}

// sealWithNonce is deterministic for identical key, nonce, plaintext and aad.
func sealWithNonce(aead cipher.AEAD, iv, plaintext, aad []byte) (ciphertext, tag []byte) {
	sealed := aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - aead.Overhead()
	return sealed[:split], sealed[split:]
}

// openAEAD rejoins ciphertext and tag and opens them.
func openAEAD(aead cipher.AEAD, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(iv) != aead.NonceSize() || len(tag) != aead.Overhead() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
