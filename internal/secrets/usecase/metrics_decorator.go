package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sealed/internal/metrics"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

const metricsDomain = "secrets"

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// StoreSecret records metrics for secret creation.
func (s *secretUseCaseWithMetrics) StoreSecret(
	ctx context.Context,
	tenantID, ownerID string,
	plaintext []byte,
) (*secretsDomain.SecretMeta, error) {
	start := time.Now()
	meta, err := s.next.StoreSecret(ctx, tenantID, ownerID, plaintext)
	s.record(ctx, secretsDomain.OperationStoreSecret, start, err)
	return meta, err
}

// GetSecretMeta records metrics for metadata lookups.
func (s *secretUseCaseWithMetrics) GetSecretMeta(
	ctx context.Context,
	id uuid.UUID,
) (*secretsDomain.SecretMeta, error) {
	start := time.Now()
	meta, err := s.next.GetSecretMeta(ctx, id)
	s.record(ctx, secretsDomain.OperationGetSecretMeta, start, err)
	return meta, err
}

// RevealSecret records metrics for secret decryption.
func (s *secretUseCaseWithMetrics) RevealSecret(ctx context.Context, id uuid.UUID) ([]byte, error) {
	start := time.Now()
	plaintext, err := s.next.RevealSecret(ctx, id)
	s.record(ctx, secretsDomain.OperationRevealSecret, start, err)
	return plaintext, err
}

func (s *secretUseCaseWithMetrics) record(
	ctx context.Context,
	op secretsDomain.Operation,
	start time.Time,
	err error,
) {
	status := metrics.Status(err)
	s.metrics.RecordOperation(ctx, metricsDomain, op.String(), status)
	s.metrics.RecordDuration(ctx, metricsDomain, op.String(), time.Since(start), status)
}
