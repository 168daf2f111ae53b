// Package http provides HTTP middleware for bearer token authentication,
// scope checks, and rate limiting.
package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	authService "github.com/allisson/sealed/internal/auth/service"
	"github.com/allisson/sealed/internal/httputil"
)

// AuthenticationMiddleware verifies the Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive scheme)
// 2. Verifies it with the TokenVerifier against the current time
// 3. Stores the resulting identity in the request context
//
// Every failure answers 401 token_invalid without saying which check failed.
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(verifier, logger))
//	router.GET("/protected", func(c *gin.Context) {
//	    id, _ := authDomain.GetIdentity(c.Request.Context())
//	})
func AuthenticationMiddleware(verifier authService.TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrTokenInvalid, logger)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token, time.Now())
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := authDomain.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject", identity.Subject),
			slog.String("tenant_id", identity.TenantID))

		c.Next()
	}
}

// AuthorizationMiddleware rejects requests whose identity lacks scope.
//
// MUST be used after AuthenticationMiddleware. Use cases repeat the check, so
// this only lets obviously unauthorized requests fail before body parsing.
func AuthorizationMiddleware(scope authDomain.Scope, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authDomain.GetIdentity(c.Request.Context())
		if !ok {
			logger.Error("authorization middleware: no identity in context")
			httputil.HandleErrorGin(c, authDomain.ErrTokenInvalid, logger)
			c.Abort()
			return
		}

		if err := authDomain.RequireScope(identity, scope); err != nil {
			logger.Debug("authorization failed",
				slog.String("subject", identity.Subject),
				slog.String("scope", string(scope)))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
