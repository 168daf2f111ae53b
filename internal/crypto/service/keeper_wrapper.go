package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// vaultVersionPrefix matches the "vault:v<N>:" prefix that Vault transit puts on ciphertexts.
var vaultVersionPrefix = regexp.MustCompile(`^vault:v(\d+):`)

// KeeperWrapper implements KeyWrapper on top of a gocloud.dev secrets keeper.
//
// The key version is read from the ciphertext when the provider embeds one
// (hashivault://) and falls back to the configured version otherwise.
type KeeperWrapper struct {
	keeper         KMSKeeper
	keyID          string
	defaultVersion int
}

// NewKeeperWrapper creates a KeeperWrapper. defaultVersion must be positive.
func NewKeeperWrapper(keeper KMSKeeper, keyID string, defaultVersion int) (*KeeperWrapper, error) {
	if keeper == nil {
		return nil, fmt.Errorf("keeper is required")
	}
	if defaultVersion < 1 {
		return nil, fmt.Errorf("invalid default key version %d", defaultVersion)
	}
	return &KeeperWrapper{keeper: keeper, keyID: keyID, defaultVersion: defaultVersion}, nil
}

// KeyID returns the configured KMS key name.
func (w *KeeperWrapper) KeyID() string {
	return w.keyID
}

// Wrap encrypts dek with the keeper.
func (w *KeeperWrapper) Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error) {
	if len(dek) != cryptoDomain.DEKSize {
		return cryptoDomain.WrappedKey{}, cryptoDomain.ErrInvalidKeySize
	}

	ciphertext, err := w.keeper.Encrypt(ctx, dek)
	if err != nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("%w: wrap: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	}

	version := w.defaultVersion
	if m := vaultVersionPrefix.FindSubmatch(ciphertext); m != nil {
		v, err := strconv.Atoi(string(m[1]))
		if err != nil || v < 1 {
			return cryptoDomain.WrappedKey{}, fmt.Errorf(
				"%w: malformed key version in wrapped key",
				cryptoDomain.ErrKeyServiceUnavailable,
			)
		}
		version = v
	}

	return cryptoDomain.WrappedKey{
		Ciphertext: ciphertext,
		KeyID:      w.keyID,
		KeyVersion: version,
	}, nil
}

// Unwrap decrypts a wrapped DEK with the keeper.
func (w *KeeperWrapper) Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error) {
	dek, err := w.keeper.Decrypt(ctx, wrapped.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	}
	if len(dek) != cryptoDomain.DEKSize {
		cryptoDomain.Zero(dek)
		return nil, fmt.Errorf("%w: unwrapped key has invalid size", cryptoDomain.ErrKeyServiceUnavailable)
	}
	return dek, nil
}

// Close releases the underlying keeper.
func (w *KeeperWrapper) Close() error {
	return w.keeper.Close()
}
