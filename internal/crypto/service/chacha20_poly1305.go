package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// It has the same 32-byte key, 12-byte nonce and 16-byte tag layout as
// AESGCMCipher and is constant-time in software, which makes it the better
// choice on hosts without AES hardware acceleration.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher instance.
// The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce and binds aad.
func (c *ChaCha20Poly1305Cipher) Seal(plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	return sealAEAD(c.aead, plaintext, aad)
}

// Open verifies the tag and decrypts ciphertext.
func (c *ChaCha20Poly1305Cipher) Open(iv, ciphertext, tag, aad []byte) ([]byte, error) {
	return openAEAD(c.aead, iv, ciphertext, tag, aad)
}
