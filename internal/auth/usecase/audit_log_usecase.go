package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	apperrors "github.com/allisson/sealed/internal/errors"
)

// MaxListLimit caps the page size of List.
const MaxListLimit = 1000

// auditLogUseCase implements AuditLogUseCase interface for recording audit logs.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	now          func() time.Time
}

// Record stores one audit entry with a UUIDv7 identifier and a UTC timestamp.
func (a *auditLogUseCase) Record(
	ctx context.Context,
	operation string,
	secretID uuid.NullUUID,
	outcome string,
	metadata map[string]any,
) error {
	if strings.TrimSpace(operation) == "" || strings.TrimSpace(outcome) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "operation and outcome are required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate audit log id")
	}

	auditLog := &authDomain.AuditLog{
		ID:        id,
		RequestID: authDomain.GetRequestID(ctx),
		Operation: operation,
		SecretID:  secretID,
		Outcome:   outcome,
		Metadata:  metadata,
		CreatedAt: a.now().UTC().Truncate(time.Microsecond),
	}
	if identity, ok := authDomain.GetIdentity(ctx); ok {
		auditLog.TenantID = identity.TenantID
		auditLog.Subject = identity.Subject
	}

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// List retrieves audit logs ordered by created_at descending (newest first).
// Both time bounds are inclusive and expected in UTC.
func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*authDomain.AuditLog, error) {
	if offset < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "offset must not be negative")
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "limit must be between 1 and %d", MaxListLimit)
	}
	if createdAtFrom != nil && createdAtTo != nil && createdAtFrom.After(*createdAtTo) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "created_at_from must not be after created_at_to")
	}

	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}

// DeleteOlderThan removes audit logs created more than days ago.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must be a positive number, got: %d", days)
	}

	olderThan := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return count, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(auditLogRepo AuditLogRepository) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		now:          time.Now,
	}
}
