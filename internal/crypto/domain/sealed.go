package domain

// SealedPayload is the output of encrypting one secret payload with its DEK.
type SealedPayload struct {
	// IV is the random 12-byte nonce used for this encryption.
	IV []byte
	// Ciphertext is the encrypted payload without the authentication tag.
	Ciphertext []byte
	// Tag is the 16-byte authentication tag.
	Tag []byte
}

// WrappedKey is a DEK wrapped by the key management service.
//
// Only the KMS that produced Ciphertext can reverse it. KeyID and KeyVersion
// identify the wrapping key generation for rotation awareness.
type WrappedKey struct {
	Ciphertext []byte
	KeyID      string
	KeyVersion int
}
