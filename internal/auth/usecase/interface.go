// Package usecase records and maintains the audit trail of secret operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
)

// AuditLogRepository defines persistence operations for audit logs.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *authDomain.AuditLog) error

	// List returns logs newest first. Nil bounds are not applied.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*authDomain.AuditLog, error)

	// DeleteOlderThan removes, or with dryRun only counts, logs created before olderThan.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// AuditLogUseCase defines the audit trail operations.
type AuditLogUseCase interface {
	// Record stores an entry for operation. The caller identity and request id
	// are taken from ctx, never from the arguments.
	Record(
		ctx context.Context,
		operation string,
		secretID uuid.NullUUID,
		outcome string,
		metadata map[string]any,
	) error

	// List returns audit logs newest first with pagination and optional inclusive time bounds.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*authDomain.AuditLog, error)

	// DeleteOlderThan removes logs older than days. With dryRun it only reports the count.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
