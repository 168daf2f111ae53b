package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// RetryingKeyWrapper retries Unwrap on transient KMS failures with exponential backoff.
// Wrap is passed through untouched.
type RetryingKeyWrapper struct {
	next            KeyWrapper
	maxRetries      uint64
	initialInterval time.Duration
	logger          *slog.Logger
}

// NewRetryingKeyWrapper decorates next. maxRetries of 0 disables retries.
func NewRetryingKeyWrapper(
	next KeyWrapper,
	maxRetries uint64,
	initialInterval time.Duration,
	logger *slog.Logger,
) *RetryingKeyWrapper {
	if initialInterval <= 0 {
		initialInterval = 100 * time.Millisecond
	}
	return &RetryingKeyWrapper{
		next:            next,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
		logger:          logger,
	}
}

// KeyID returns the key name of the wrapped KeyWrapper.
func (r *RetryingKeyWrapper) KeyID() string {
	return r.next.KeyID()
}

// Wrap delegates to the wrapped KeyWrapper without retrying.
func (r *RetryingKeyWrapper) Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error) {
	return r.next.Wrap(ctx, dek)
}

// Unwrap retries only ErrKeyServiceUnavailable failures, bounded by maxRetries and ctx.
func (r *RetryingKeyWrapper) Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error) {
	var dek []byte

	operation := func() error {
		out, err := r.next.Unwrap(ctx, wrapped)
		if err != nil {
			if errors.Is(err, cryptoDomain.ErrKeyServiceUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		dek = out
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = r.initialInterval
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, r.maxRetries), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		if r.logger != nil {
			r.logger.Warn("retrying key unwrap",
				slog.String("key_id", wrapped.KeyID),
				slog.Duration("next_attempt_in", next),
				slog.Any("error", err),
			)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyServiceUnavailable, err)
		}
		return nil, err
	}
	return dek, nil
}
