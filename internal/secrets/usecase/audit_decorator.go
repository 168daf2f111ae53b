package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	authUsecase "github.com/allisson/sealed/internal/auth/usecase"
	"github.com/allisson/sealed/internal/metrics"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// secretUseCaseWithAudit records every secret operation in the audit trail.
//
// Audit writes are best effort: a failed write is logged and the operation
// result is returned unchanged.
type secretUseCaseWithAudit struct {
	next     SecretUseCase
	auditLog authUsecase.AuditLogUseCase
	logger   *slog.Logger
}

// NewSecretUseCaseWithAudit wraps a SecretUseCase with audit logging.
func NewSecretUseCaseWithAudit(
	useCase SecretUseCase,
	auditLogUseCase authUsecase.AuditLogUseCase,
	logger *slog.Logger,
) SecretUseCase {
	return &secretUseCaseWithAudit{
		next:     useCase,
		auditLog: auditLogUseCase,
		logger:   logger,
	}
}

func (s *secretUseCaseWithAudit) StoreSecret(
	ctx context.Context,
	tenantID, ownerID string,
	plaintext []byte,
) (*secretsDomain.SecretMeta, error) {
	meta, err := s.next.StoreSecret(ctx, tenantID, ownerID, plaintext)

	var secretID uuid.NullUUID
	if meta != nil {
		secretID = uuid.NullUUID{UUID: meta.ID, Valid: true}
	}
	s.record(ctx, secretsDomain.OperationStoreSecret, secretID, err, map[string]any{
		"target_tenant_id": tenantID,
		"owner_id":         ownerID,
	})
	return meta, err
}

func (s *secretUseCaseWithAudit) GetSecretMeta(
	ctx context.Context,
	id uuid.UUID,
) (*secretsDomain.SecretMeta, error) {
	meta, err := s.next.GetSecretMeta(ctx, id)
	s.record(ctx, secretsDomain.OperationGetSecretMeta, uuid.NullUUID{UUID: id, Valid: true}, err, nil)
	return meta, err
}

func (s *secretUseCaseWithAudit) RevealSecret(ctx context.Context, id uuid.UUID) ([]byte, error) {
	plaintext, err := s.next.RevealSecret(ctx, id)
	s.record(ctx, secretsDomain.OperationRevealSecret, uuid.NullUUID{UUID: id, Valid: true}, err, nil)
	return plaintext, err
}

func (s *secretUseCaseWithAudit) record(
	ctx context.Context,
	op secretsDomain.Operation,
	secretID uuid.NullUUID,
	opErr error,
	metadata map[string]any,
) {
	// The entry is written even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	if err := s.auditLog.Record(ctx, op.String(), secretID, metrics.Status(opErr), metadata); err != nil {
		s.logger.Error("failed to record audit log",
			slog.String("operation", op.String()),
			slog.Any("error", err))
	}
}
