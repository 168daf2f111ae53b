package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
)

// TokenClaims describes a token minted by TokenIssuer.
// Zero Expiry means one hour from now. Empty Audience uses the issuer default.
type TokenClaims struct {
	Subject   string
	TenantID  string
	Scope     string
	Audience  []string
	Issuer    string
	Expiry    time.Time
	NotBefore time.Time
}

// TokenIssuer signs RS256 tokens the way the identity provider does.
type TokenIssuer struct {
	Issuer   string
	Audience string
	KeyID    string
	key      *rsa.PrivateKey
}

// NewTokenIssuer generates a fresh RSA signing key identified by kid.
func NewTokenIssuer(t testing.TB, issuer, audience, kid string) *TokenIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate rsa key")

	return &TokenIssuer{Issuer: issuer, Audience: audience, KeyID: kid, key: key}
}

// PublicJWK returns the verification key as published in a JWKS document.
func (i *TokenIssuer) PublicJWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       &i.key.PublicKey,
		KeyID:     i.KeyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}
}

// Token signs claims and returns the compact serialization.
func (i *TokenIssuer) Token(t testing.TB, claims TokenClaims) string {
	t.Helper()

	signer, err := jose.NewSigner(
		jose.SigningKey{
			Algorithm: jose.RS256,
			Key:       jose.JSONWebKey{Key: i.key, KeyID: i.KeyID},
		},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err, "failed to create signer")

	now := time.Now()
	expiry := claims.Expiry
	if expiry.IsZero() {
		expiry = now.Add(time.Hour)
	}
	issuer := claims.Issuer
	if issuer == "" {
		issuer = i.Issuer
	}
	audience := claims.Audience
	if audience == nil {
		audience = []string{i.Audience}
	}

	registered := jwt.Claims{
		Issuer:   issuer,
		Subject:  claims.Subject,
		Audience: jwt.Audience(audience),
		Expiry:   jwt.NewNumericDate(expiry),
	}
	if !claims.NotBefore.IsZero() {
		registered.NotBefore = jwt.NewNumericDate(claims.NotBefore)
	}

	custom := map[string]any{"scope": claims.Scope}
	if claims.TenantID != "" {
		custom["tenantId"] = claims.TenantID
	}

	token, err := jwt.Signed(signer).Claims(registered).Claims(custom).Serialize()
	require.NoError(t, err, "failed to serialize token")
	return token
}

// JWKSServer publishes a mutable key set over HTTP and counts fetches.
type JWKSServer struct {
	*httptest.Server
	mu      sync.RWMutex
	keys    []jose.JSONWebKey
	fetches atomic.Int32
}

// NewJWKSServer starts a JWKS endpoint serving the issuers' public keys.
// The server is closed when the test finishes.
func NewJWKSServer(t testing.TB, issuers ...*TokenIssuer) *JWKSServer {
	t.Helper()

	s := &JWKSServer{}
	s.SetIssuers(issuers...)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.fetches.Add(1)
		s.mu.RLock()
		set := jose.JSONWebKeySet{Keys: s.keys}
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(s.Close)
	return s
}

// SetIssuers replaces the published keys.
func (s *JWKSServer) SetIssuers(issuers ...*TokenIssuer) {
	keys := make([]jose.JSONWebKey, 0, len(issuers))
	for _, i := range issuers {
		keys = append(keys, i.PublicJWK())
	}
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
}

// Fetches returns how many times the key set was requested.
func (s *JWKSServer) Fetches() int {
	return int(s.fetches.Load())
}
