package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	authUsecase "github.com/allisson/sealed/internal/auth/usecase"
)

// auditLogOutput is the JSON shape of one audit entry.
type auditLogOutput struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id,omitempty"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Operation string         `json:"operation"`
	SecretID  string         `json:"secret_id,omitempty"`
	Outcome   string         `json:"outcome"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RunListAuditLogs prints one page of audit logs, newest first, optionally
// bounded by inclusive start and end dates (UTC).
func RunListAuditLogs(
	ctx context.Context,
	auditLogUseCase authUsecase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	offset, limit int,
	startDate, endDate string,
	format string,
) error {
	from, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	to, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	logger.Info("listing audit logs",
		slog.Int("offset", offset),
		slog.Int("limit", limit),
	)

	auditLogs, err := auditLogUseCase.List(ctx, offset, limit, from, to)
	if err != nil {
		return fmt.Errorf("failed to list audit logs: %w", err)
	}

	if format == "json" {
		items := make([]auditLogOutput, 0, len(auditLogs))
		for _, auditLog := range auditLogs {
			items = append(items, toAuditLogOutput(auditLog))
		}
		return writeJSON(writer, map[string]any{"data": items})
	}

	outputListText(writer, auditLogs)
	return nil
}

func toAuditLogOutput(auditLog *authDomain.AuditLog) auditLogOutput {
	out := auditLogOutput{
		ID:        auditLog.ID.String(),
		RequestID: auditLog.RequestID,
		TenantID:  auditLog.TenantID,
		Subject:   auditLog.Subject,
		Operation: auditLog.Operation,
		Outcome:   auditLog.Outcome,
		Metadata:  auditLog.Metadata,
		CreatedAt: auditLog.CreatedAt,
	}
	if auditLog.SecretID.Valid {
		out.SecretID = auditLog.SecretID.UUID.String()
	}
	return out
}

func outputListText(writer io.Writer, auditLogs []*authDomain.AuditLog) {
	if len(auditLogs) == 0 {
		_, _ = fmt.Fprintln(writer, "No audit logs found")
		return
	}

	for _, auditLog := range auditLogs {
		secretID := "-"
		if auditLog.SecretID.Valid {
			secretID = auditLog.SecretID.UUID.String()
		}
		_, _ = fmt.Fprintf(writer, "%s  %-14s %-24s tenant=%s subject=%s secret=%s request=%s\n",
			auditLog.CreatedAt.UTC().Format(time.RFC3339),
			auditLog.Operation,
			auditLog.Outcome,
			auditLog.TenantID,
			auditLog.Subject,
			secretID,
			auditLog.RequestID,
		)
	}
}
