package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	authService "github.com/allisson/sealed/internal/auth/service"
)

// RunVerifyToken checks a bearer token against the configured issuer,
// audience and key set, and prints the identity it carries.
func RunVerifyToken(
	ctx context.Context,
	verifier authService.TokenVerifier,
	logger *slog.Logger,
	writer io.Writer,
	token string,
	format string,
) error {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return fmt.Errorf("token is required")
	}

	identity, err := verifier.Verify(ctx, token, time.Now())
	if err != nil {
		logger.Warn("token rejected", slog.Any("error", err))
		return fmt.Errorf("token rejected: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"subject":   identity.Subject,
			"tenant_id": identity.TenantID,
			"scopes":    identity.ScopeList(),
		})
	}

	_, _ = fmt.Fprintf(writer, "Subject:  %s\n", identity.Subject)
	_, _ = fmt.Fprintf(writer, "Tenant:   %s\n", identity.TenantID)
	_, _ = fmt.Fprintf(writer, "Scopes:   %s\n", strings.Join(identity.ScopeList(), " "))
	return nil
}
