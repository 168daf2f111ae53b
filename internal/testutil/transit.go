package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TransitServer is an in-process fake of the Vault transit engine.
//
// It really encrypts with an AES-GCM key so wrapped keys are opaque, and
// prefixes ciphertexts with "vault:v<Version>:" like Vault does.
type TransitServer struct {
	*httptest.Server

	Token   string
	KeyName string
	Version int

	// Failure injection.
	EncryptStatus atomic.Int32
	DecryptStatus atomic.Int32
	OmitVersion   atomic.Bool

	EncryptCalls atomic.Int32
	DecryptCalls atomic.Int32

	aead cipher.AEAD
}

// NewTransitServer starts a fake transit engine for keyName accepting token.
func NewTransitServer(t testing.TB, token, keyName string) *TransitServer {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	aead, err := cipher.NewGCM(block)
	require.NoError(t, err)

	s := &TransitServer{Token: token, KeyName: keyName, Version: 1, aead: aead}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

func (s *TransitServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/v1/sys/health" {
		_, _ = w.Write([]byte(`{"initialized":true,"sealed":false,"standby":false}`))
		return
	}

	if r.Header.Get("X-Vault-Token") != s.Token {
		writeVaultError(w, http.StatusForbidden, "permission denied")
		return
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeVaultError(w, http.StatusBadRequest, "invalid request")
		return
	}

	switch r.URL.Path {
	case "/v1/transit/encrypt/" + s.KeyName:
		s.EncryptCalls.Add(1)
		if status := int(s.EncryptStatus.Load()); status != 0 {
			writeVaultError(w, status, "internal error")
			return
		}
		s.encrypt(w, body["plaintext"])
	case "/v1/transit/decrypt/" + s.KeyName:
		s.DecryptCalls.Add(1)
		if status := int(s.DecryptStatus.Load()); status != 0 {
			writeVaultError(w, status, "internal error")
			return
		}
		s.decrypt(w, body["ciphertext"])
	default:
		writeVaultError(w, http.StatusNotFound, "no handler for route")
	}
}

func (s *TransitServer) encrypt(w http.ResponseWriter, encoded string) {
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeVaultError(w, http.StatusBadRequest, "plaintext must be base64")
		return
	}

	nonce := make([]byte, s.aead.NonceSize())
	_, _ = rand.Read(nonce)
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	data := map[string]any{
		"ciphertext": "vault:v" + strconv.Itoa(s.Version) + ":" + base64.StdEncoding.EncodeToString(sealed),
	}
	if !s.OmitVersion.Load() {
		data["key_version"] = s.Version
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (s *TransitServer) decrypt(w http.ResponseWriter, ciphertext string) {
	prefix := "vault:v" + strconv.Itoa(s.Version) + ":"
	if !strings.HasPrefix(ciphertext, prefix) {
		writeVaultError(w, http.StatusBadRequest, "invalid ciphertext")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, prefix))
	if err != nil || len(raw) < s.aead.NonceSize() {
		writeVaultError(w, http.StatusBadRequest, "invalid ciphertext")
		return
	}

	nonce, sealed := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		writeVaultError(w, http.StatusBadRequest, "cipher: message authentication failed")
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"plaintext": base64.StdEncoding.EncodeToString(plaintext)},
	})
}

func writeVaultError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{msg}})
}
