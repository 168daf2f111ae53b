package service

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	"github.com/allisson/sealed/internal/metrics"
)

const kmsMetricsDomain = "kms"

// keyWrapperWithMetrics decorates a KeyWrapper with KMS call metrics.
type keyWrapperWithMetrics struct {
	next    KeyWrapper
	metrics metrics.BusinessMetrics
}

// NewKeyWrapperWithMetrics records the outcome and latency of every wrap and unwrap.
func NewKeyWrapperWithMetrics(next KeyWrapper, m metrics.BusinessMetrics) KeyWrapper {
	return &keyWrapperWithMetrics{next: next, metrics: m}
}

func (k *keyWrapperWithMetrics) KeyID() string {
	return k.next.KeyID()
}

func (k *keyWrapperWithMetrics) Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error) {
	start := time.Now()
	wrapped, err := k.next.Wrap(ctx, dek)
	k.record(ctx, "wrap", start, err)
	return wrapped, err
}

func (k *keyWrapperWithMetrics) Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error) {
	start := time.Now()
	dek, err := k.next.Unwrap(ctx, wrapped)
	k.record(ctx, "unwrap", start, err)
	return dek, err
}

func (k *keyWrapperWithMetrics) record(ctx context.Context, op string, start time.Time, err error) {
	status := metrics.Status(err)
	k.metrics.RecordOperation(ctx, kmsMetricsDomain, op, status)
	k.metrics.RecordDuration(ctx, kmsMetricsDomain, op, time.Since(start), status)
}
