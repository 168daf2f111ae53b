package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	vault "github.com/hashicorp/vault/api"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// VaultTransitConfig configures a VaultTransitWrapper.
type VaultTransitConfig struct {
	Address string
	Token   string
	KeyName string
	Timeout time.Duration
}

// VaultTransitWrapper implements KeyWrapper against the Vault transit secrets engine.
//
// The Vault client is created with MaxRetries=0 since encrypt calls are not
// idempotent. Unwrap retries are layered on top by RetryingKeyWrapper.
type VaultTransitWrapper struct {
	client  *vault.Client
	keyName string
}

// NewVaultTransitWrapper builds a Vault API client for the transit engine.
func NewVaultTransitWrapper(cfg VaultTransitConfig) (*VaultTransitWrapper, error) {
	if cfg.Address == "" || cfg.KeyName == "" {
		return nil, fmt.Errorf("vault address and key name are required")
	}

	vc := vault.DefaultConfig()
	vc.Address = cfg.Address
	vc.MaxRetries = 0
	if cfg.Timeout > 0 {
		vc.Timeout = cfg.Timeout
	}

	client, err := vault.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultTransitWrapper{client: client, keyName: cfg.KeyName}, nil
}

// KeyID returns the transit key name.
func (w *VaultTransitWrapper) KeyID() string {
	return w.keyName
}

// Wrap calls transit/encrypt/<key> with the base64 DEK.
// A response without a usable key_version is treated as a KMS failure.
func (w *VaultTransitWrapper) Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error) {
	if len(dek) != cryptoDomain.DEKSize {
		return cryptoDomain.WrappedKey{}, cryptoDomain.ErrInvalidKeySize
	}

	secret, err := w.client.Logical().WriteWithContext(ctx, "transit/encrypt/"+w.keyName, map[string]any{
		"plaintext": base64.StdEncoding.EncodeToString(dek),
	})
	if err != nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("%w: transit encrypt: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("%w: transit encrypt: empty response", cryptoDomain.ErrKeyServiceUnavailable)
	}

	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok || ciphertext == "" {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("%w: transit encrypt: missing ciphertext", cryptoDomain.ErrKeyServiceUnavailable)
	}

	version, err := parseKeyVersion(secret.Data["key_version"])
	if err != nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("%w: transit encrypt: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	}

	return cryptoDomain.WrappedKey{
		Ciphertext: []byte(ciphertext),
		KeyID:      w.keyName,
		KeyVersion: version,
	}, nil
}

// Unwrap calls transit/decrypt/<key> and returns the 32-byte DEK.
func (w *VaultTransitWrapper) Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error) {
	keyName := wrapped.KeyID
	if keyName == "" {
		keyName = w.keyName
	}

	secret, err := w.client.Logical().WriteWithContext(ctx, "transit/decrypt/"+keyName, map[string]any{
		"ciphertext": string(wrapped.Ciphertext),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: transit decrypt: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: transit decrypt: empty response", cryptoDomain.ErrKeyServiceUnavailable)
	}

	encoded, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: transit decrypt: missing plaintext", cryptoDomain.ErrKeyServiceUnavailable)
	}

	dek, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: transit decrypt: invalid plaintext encoding", cryptoDomain.ErrKeyServiceUnavailable)
	}
	if len(dek) != cryptoDomain.DEKSize {
		cryptoDomain.Zero(dek)
		return nil, fmt.Errorf("%w: transit decrypt: unwrapped key has invalid size", cryptoDomain.ErrKeyServiceUnavailable)
	}
	return dek, nil
}

// Ping checks that Vault is reachable, initialized and unsealed.
func (w *VaultTransitWrapper) Ping(ctx context.Context) error {
	h, err := w.client.Sys().HealthWithContext(ctx)
	switch {
	case err != nil:
		return fmt.Errorf("%w: vault health: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
	case h == nil:
		return fmt.Errorf("%w: vault health: no response", cryptoDomain.ErrKeyServiceUnavailable)
	case !h.Initialized || h.Sealed:
		return fmt.Errorf(
			"%w: vault initialized: %t, sealed: %t",
			cryptoDomain.ErrKeyServiceUnavailable,
			h.Initialized,
			h.Sealed,
		)
	}
	return nil
}

// parseKeyVersion accepts the numeric shapes the Vault client may decode key_version into.
func parseKeyVersion(raw any) (int, error) {
	var version int
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("malformed key_version %q", v.String())
		}
		version = n
	case float64:
		version = int(v)
	case int:
		version = v
	case nil:
		return 0, fmt.Errorf("missing key_version")
	default:
		return 0, fmt.Errorf("malformed key_version %v", v)
	}
	if version < 1 {
		return 0, fmt.Errorf("invalid key_version %d", version)
	}
	return version, nil
}
