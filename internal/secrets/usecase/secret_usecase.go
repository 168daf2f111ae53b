package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	cryptoService "github.com/allisson/sealed/internal/crypto/service"
	apperrors "github.com/allisson/sealed/internal/errors"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// Config holds the tunables of the secret use case.
type Config struct {
	// Algorithm is the AEAD used for new secrets.
	Algorithm cryptoDomain.Algorithm
	// MaxSecretSize bounds plaintext length in bytes. Zero means unlimited.
	MaxSecretSize int
	// KMSTimeout bounds each wrap or unwrap call. Zero means no extra deadline.
	KMSTimeout time.Duration
	// DBTimeout bounds each repository call. Zero means no extra deadline.
	DBTimeout time.Duration
}

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	secretRepo SecretRepository
	envelope   cryptoService.EnvelopeEngine
	keyWrapper cryptoService.KeyWrapper
	config     Config
	now        func() time.Time
}

// NewSecretUseCase creates a new SecretUseCase.
func NewSecretUseCase(
	secretRepo SecretRepository,
	envelope cryptoService.EnvelopeEngine,
	keyWrapper cryptoService.KeyWrapper,
	config Config,
) SecretUseCase {
	if config.Algorithm == "" {
		config.Algorithm = cryptoDomain.AESGCM
	}
	return &secretUseCase{
		secretRepo: secretRepo,
		envelope:   envelope,
		keyWrapper: keyWrapper,
		config:     config,
		now:        time.Now,
	}
}

// StoreSecret seals plaintext for ownerID in tenantID and persists it.
//
// Nothing touches the KMS or the repository before the caller passes the
// guard. A failed wrap leaves nothing persisted.
func (s *secretUseCase) StoreSecret(
	ctx context.Context,
	tenantID, ownerID string,
	plaintext []byte,
) (*secretsDomain.SecretMeta, error) {
	identity, _ := authDomain.GetIdentity(ctx)
	if err := authDomain.RequireScope(identity, authDomain.ScopeSecretWrite); err != nil {
		return nil, err
	}
	if err := authDomain.RequireSameTenant(identity, tenantID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "owner_id is required")
	}
	if s.config.MaxSecretSize > 0 && len(plaintext) > s.config.MaxSecretSize {
		return nil, secretsDomain.ErrPlaintextTooLarge
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret id: %w", err)
	}

	dek, err := s.envelope.GenerateDEK()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	keyID := s.keyWrapper.KeyID()
	record := &secretsDomain.SecretRecord{
		ID:        id,
		TenantID:  tenantID,
		OwnerID:   ownerID,
		KeyID:     keyID,
		Algorithm: s.config.Algorithm,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	sealed, err := s.envelope.Encrypt(dek, plaintext, record.IdentityTuple(), record.Algorithm)
	if err != nil {
		return nil, err
	}
	record.IV = sealed.IV
	record.Ciphertext = sealed.Ciphertext
	record.Tag = sealed.Tag

	kmsCtx, cancel := withTimeout(ctx, s.config.KMSTimeout)
	wrapped, err := s.keyWrapper.Wrap(kmsCtx, dek)
	cancel()
	if err != nil {
		return nil, err
	}
	if wrapped.KeyID != keyID {
		return nil, fmt.Errorf("%w: wrapped under unexpected key %q", cryptoDomain.ErrKeyServiceUnavailable, wrapped.KeyID)
	}
	record.WrappedDEK = wrapped.Ciphertext
	record.KeyVersion = wrapped.KeyVersion

	dbCtx, cancel := withTimeout(ctx, s.config.DBTimeout)
	defer cancel()
	if err := s.secretRepo.Create(dbCtx, record); err != nil {
		return nil, err
	}

	return record.Meta(), nil
}

// GetSecretMeta returns metadata for a secret in the caller's tenant.
func (s *secretUseCase) GetSecretMeta(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretMeta, error) {
	record, err := s.fetchOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Meta(), nil
}

// RevealSecret unwraps the record's DEK and decrypts its payload.
func (s *secretUseCase) RevealSecret(ctx context.Context, id uuid.UUID) ([]byte, error) {
	record, err := s.fetchOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	identity, _ := authDomain.GetIdentity(ctx)
	if err := authDomain.RequireScope(identity, authDomain.ScopeSecretRead); err != nil {
		return nil, err
	}

	kmsCtx, cancel := withTimeout(ctx, s.config.KMSTimeout)
	dek, err := s.keyWrapper.Unwrap(kmsCtx, record.WrappedKey())
	cancel()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	return s.envelope.Decrypt(dek, record.Algorithm, record.SealedPayload(), record.IdentityTuple())
}

// fetchOwned loads a record and checks it belongs to the caller's tenant.
func (s *secretUseCase) fetchOwned(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error) {
	identity, ok := authDomain.GetIdentity(ctx)
	if !ok {
		return nil, authDomain.ErrTokenInvalid
	}

	dbCtx, cancel := withTimeout(ctx, s.config.DBTimeout)
	defer cancel()
	record, err := s.secretRepo.Get(dbCtx, id)
	if err != nil {
		return nil, err
	}

	if err := authDomain.RequireOwnership(identity, record); err != nil {
		return nil, err
	}
	return record, nil
}

// withTimeout derives a context bounded by d, or a cancellable copy when d is zero.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
