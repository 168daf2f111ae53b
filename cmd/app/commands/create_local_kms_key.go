package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"gocloud.dev/secrets/localsecrets"

	"github.com/allisson/sealed/internal/config"
	cryptoService "github.com/allisson/sealed/internal/crypto/service"
)

// RunCreateLocalKMSKey generates a random base64key:// keeper URI for local
// development and prints the matching KMS environment variables.
//
// The key is checked with an encrypt/decrypt round trip before it is printed.
// Never use the keeper provider with a local key in production.
func RunCreateLocalKMSKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	keyName string,
	format string,
) error {
	if keyName == "" {
		keyName = "local"
	}

	key, err := localsecrets.NewRandomKey()
	if err != nil {
		return fmt.Errorf("failed to generate local kms key: %w", err)
	}
	keyURI := "base64key://" + base64.URLEncoding.EncodeToString(key[:])

	if err := probeKeeper(ctx, kmsService, keyURI); err != nil {
		return err
	}

	env := map[string]any{
		"KMS_PROVIDER":    config.KMSProviderKeeper,
		"KMS_KEY_URI":     keyURI,
		"KMS_KEY_NAME":    keyName,
		"KMS_KEY_VERSION": 1,
	}
	if format == "json" {
		return writeJSON(writer, env)
	}

	_, _ = fmt.Fprintln(writer, "# Local KMS key for development only")
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", config.KMSProviderKeeper)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", keyURI)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_NAME=\"%s\"\n", keyName)
	_, _ = fmt.Fprintln(writer, "KMS_KEY_VERSION=\"1\"")
	return nil
}

// probeKeeper opens keyURI and checks that a random DEK survives a round trip.
func probeKeeper(ctx context.Context, kmsService cryptoService.KMSService, keyURI string) error {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = keeper.Close()
	}()

	probe := make([]byte, 32)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("failed to generate probe: %w", err)
	}

	ciphertext, err := keeper.Encrypt(ctx, probe)
	if err != nil {
		return fmt.Errorf("failed to encrypt probe: %w", err)
	}
	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return fmt.Errorf("failed to decrypt probe: %w", err)
	}
	if !bytes.Equal(probe, plaintext) {
		return fmt.Errorf("kms key round trip mismatch")
	}
	return nil
}
