package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
)

// allowedAlgorithms lists the asymmetric signature algorithms accepted on tokens.
var allowedAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256,
	jose.RS384,
	jose.RS512,
	jose.PS256,
	jose.ES256,
	jose.ES384,
	jose.EdDSA,
}

// tokenClaims holds the non-registered claims read from the token.
type tokenClaims struct {
	TenantID string `json:"tenantId"`
	Scope    string `json:"scope"`
}

// JWTVerifierConfig configures JWTVerifier.
type JWTVerifierConfig struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTVerifier implements TokenVerifier for signed JWTs.
type JWTVerifier struct {
	keySet KeySet
	config JWTVerifierConfig
	logger *slog.Logger
}

// NewJWTVerifier creates a JWTVerifier that resolves signing keys from keySet.
func NewJWTVerifier(keySet KeySet, config JWTVerifierConfig, logger *slog.Logger) *JWTVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &JWTVerifier{keySet: keySet, config: config, logger: logger}
}

// Verify validates token and returns the caller identity.
//
// The returned error is always ErrTokenInvalid; the failing check is only logged.
func (v *JWTVerifier) Verify(ctx context.Context, token string, now time.Time) (*authDomain.Identity, error) {
	tok, err := jwt.ParseSigned(token, allowedAlgorithms)
	if err != nil {
		return nil, v.reject("malformed token", err)
	}
	if len(tok.Headers) != 1 {
		return nil, v.reject("unexpected number of signatures", nil)
	}
	header := tok.Headers[0]

	key, err := v.keySet.LookupKey(ctx, header.KeyID)
	if err != nil {
		return nil, v.reject("signing key lookup failed", err)
	}
	if key.Algorithm != "" && key.Algorithm != header.Algorithm {
		return nil, v.reject("algorithm does not match key", nil)
	}

	var registered jwt.Claims
	var custom tokenClaims
	if err := tok.Claims(key.Key, &registered, &custom); err != nil {
		return nil, v.reject("signature verification failed", err)
	}

	if registered.Expiry == nil {
		return nil, v.reject("missing exp claim", nil)
	}

	expected := jwt.Expected{
		Issuer:      v.config.Issuer,
		AnyAudience: jwt.Audience{v.config.Audience},
		Time:        now,
	}
	if err := registered.ValidateWithLeeway(expected, v.config.Leeway); err != nil {
		return nil, v.reject("claim validation failed", err)
	}

	if registered.Subject == "" || custom.TenantID == "" {
		return nil, v.reject("missing subject or tenant", nil)
	}

	return authDomain.NewIdentity(
		registered.Subject,
		custom.TenantID,
		authDomain.ParseScopes(custom.Scope)...,
	), nil
}

func (v *JWTVerifier) reject(reason string, err error) error {
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	v.logger.Debug("token rejected", attrs...)
	return authDomain.ErrTokenInvalid
}
