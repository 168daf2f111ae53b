package domain

// Algorithm represents the AEAD cipher used to encrypt a secret payload with its DEK.
//
// Both supported algorithms use a 256-bit key, a 12-byte nonce and a 16-byte
// authentication tag, so records sealed with either share the same layout.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// This is the default and the only algorithm used by records written without
	// an explicit algorithm column.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// Prefer it on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// DEKSize is the length in bytes of every data encryption key.
	DEKSize = 32

	// IVSize is the length in bytes of the random nonce generated per encryption.
	IVSize = 12

	// TagSize is the length in bytes of the AEAD authentication tag.
	TagSize = 16
)

// ParseAlgorithm converts a configuration string to an Algorithm.
// An empty string selects AESGCM.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch Algorithm(value) {
	case "", AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
