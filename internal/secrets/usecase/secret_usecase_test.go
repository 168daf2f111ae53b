package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets/localsecrets"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	cryptoService "github.com/allisson/sealed/internal/crypto/service"
	cryptoMocks "github.com/allisson/sealed/internal/crypto/service/mocks"
	apperrors "github.com/allisson/sealed/internal/errors"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
	secretsMocks "github.com/allisson/sealed/internal/secrets/usecase/mocks"
)

// memoryRepository is an in-memory SecretRepository. A non-zero precision
// truncates created_at on write the way the SQL column types do.
type memoryRepository struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*secretsDomain.SecretRecord
	precision time.Duration
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[uuid.UUID]*secretsDomain.SecretRecord)}
}

func (r *memoryRepository) Create(_ context.Context, record *secretsDomain.SecretRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; ok {
		return apperrors.ErrConflict
	}
	cp := *record
	if r.precision > 0 {
		cp.CreatedAt = cp.CreatedAt.Truncate(r.precision)
	}
	r.records[record.ID] = &cp
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	cp := *record
	return &cp, nil
}

func (r *memoryRepository) mutate(id uuid.UUID, fn func(*secretsDomain.SecretRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.records[id])
}

func newLocalWrapper(t *testing.T) cryptoService.KeyWrapper {
	t.Helper()
	key, err := localsecrets.NewRandomKey()
	require.NoError(t, err)
	wrapper, err := cryptoService.NewKeeperWrapper(localsecrets.NewKeeper(key), "sek", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wrapper.Close() })
	return wrapper
}

func newTestUseCase(t *testing.T, config Config) (SecretUseCase, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	envelope := cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager())
	return NewSecretUseCase(repo, envelope, newLocalWrapper(t), config), repo
}

func asCaller(tenantID, subject string, scopes ...authDomain.Scope) context.Context {
	return authDomain.WithIdentity(context.Background(), authDomain.NewIdentity(subject, tenantID, scopes...))
}

func fullAccess(tenantID string) context.Context {
	return asCaller(tenantID, "svc-"+tenantID, authDomain.ScopeSecretRead, authDomain.ScopeSecretWrite)
}

func TestSecretUseCase_StoreAndReveal(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			uc, repo := newTestUseCase(t, Config{Algorithm: alg})
			ctx := fullAccess("t1")

			meta, err := uc.StoreSecret(ctx, "t1", "alice", []byte("hunter2"))
			require.NoError(t, err)
			assert.Equal(t, "t1", meta.TenantID)
			assert.Equal(t, "alice", meta.OwnerID)
			assert.Equal(t, uuid.Version(7), meta.ID.Version())
			assert.WithinDuration(t, time.Now().UTC(), meta.CreatedAt, 5*time.Second)

			stored, err := repo.Get(ctx, meta.ID)
			require.NoError(t, err)
			assert.Equal(t, "sek", stored.KeyID)
			assert.Equal(t, 1, stored.KeyVersion)
			assert.Equal(t, alg, stored.Algorithm)
			assert.Len(t, stored.IV, cryptoDomain.IVSize)
			assert.Len(t, stored.Tag, cryptoDomain.TagSize)
			assert.NotContains(t, string(stored.Ciphertext), "hunter2")
			assert.NotEmpty(t, stored.WrappedDEK)

			plaintext, err := uc.RevealSecret(ctx, meta.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("hunter2"), plaintext)

			got, err := uc.GetSecretMeta(ctx, meta.ID)
			require.NoError(t, err)
			assert.Equal(t, meta, got)
		})
	}
}

func TestSecretUseCase_CreatedAtMatchesStoredPrecision(t *testing.T) {
	repo := newMemoryRepository()
	repo.precision = time.Microsecond
	uc := NewSecretUseCase(
		repo,
		cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()),
		newLocalWrapper(t),
		Config{},
	)
	uc.(*secretUseCase).now = func() time.Time {
		return time.Date(2026, 5, 4, 8, 0, 0, 123456789, time.FixedZone("BRT", -3*60*60))
	}
	ctx := fullAccess("t1")

	meta, err := uc.StoreSecret(ctx, "t1", "alice", []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 4, 11, 0, 0, 123456000, time.UTC), meta.CreatedAt)

	got, err := uc.GetSecretMeta(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

func TestSecretUseCase_EmptyPlaintext(t *testing.T) {
	uc, _ := newTestUseCase(t, Config{})
	ctx := fullAccess("t1")

	meta, err := uc.StoreSecret(ctx, "t1", "alice", []byte{})
	require.NoError(t, err)

	plaintext, err := uc.RevealSecret(ctx, meta.ID)
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestSecretUseCase_StoreSecret_Validation(t *testing.T) {
	uc, _ := newTestUseCase(t, Config{MaxSecretSize: 8})
	ctx := fullAccess("t1")

	t.Run("blank owner", func(t *testing.T) {
		_, err := uc.StoreSecret(ctx, "t1", "  ", []byte("x"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("plaintext too large", func(t *testing.T) {
		_, err := uc.StoreSecret(ctx, "t1", "alice", []byte("123456789"))
		assert.ErrorIs(t, err, secretsDomain.ErrPlaintextTooLarge)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("plaintext at limit", func(t *testing.T) {
		_, err := uc.StoreSecret(ctx, "t1", "alice", []byte("12345678"))
		assert.NoError(t, err)
	})
}

// The guard runs before any KMS or repository call, so the mocks carry no expectations.
func TestSecretUseCase_StoreSecret_GuardFirst(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		tenant  string
		wantErr error
	}{
		{
			name:    "no identity",
			ctx:     context.Background(),
			tenant:  "t1",
			wantErr: authDomain.ErrTokenInvalid,
		},
		{
			name:    "missing write scope",
			ctx:     asCaller("t1", "svc", authDomain.ScopeSecretRead),
			tenant:  "t1",
			wantErr: authDomain.ErrInsufficientScope,
		},
		{
			name:    "cross tenant",
			ctx:     fullAccess("t1"),
			tenant:  "t2",
			wantErr: authDomain.ErrCrossTenantDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &secretsMocks.MockSecretRepository{}
			wrapper := &cryptoMocks.MockKeyWrapper{}
			uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), wrapper, Config{})

			meta, err := uc.StoreSecret(tt.ctx, tt.tenant, "alice", []byte("secret"))
			assert.Nil(t, meta)
			assert.ErrorIs(t, err, tt.wantErr)

			wrapper.AssertNotCalled(t, "KeyID")
			wrapper.AssertNotCalled(t, "Wrap", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSecretUseCase_StoreSecret_KMSFailure(t *testing.T) {
	t.Run("wrap error persists nothing", func(t *testing.T) {
		repo := &secretsMocks.MockSecretRepository{}
		wrapper := &cryptoMocks.MockKeyWrapper{}
		wrapper.On("KeyID").Return("sek")
		wrapper.On("Wrap", mock.Anything, mock.Anything).
			Return(cryptoDomain.WrappedKey{}, cryptoDomain.ErrKeyServiceUnavailable).
			Once()

		uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), wrapper, Config{})
		_, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyServiceUnavailable)

		wrapper.AssertExpectations(t)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("wrapped under another key", func(t *testing.T) {
		repo := &secretsMocks.MockSecretRepository{}
		wrapper := &cryptoMocks.MockKeyWrapper{}
		wrapper.On("KeyID").Return("sek")
		wrapper.On("Wrap", mock.Anything, mock.Anything).
			Return(cryptoDomain.WrappedKey{Ciphertext: []byte("blob"), KeyID: "other", KeyVersion: 1}, nil).
			Once()

		uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), wrapper, Config{})
		_, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyServiceUnavailable)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("wrap runs under kms timeout", func(t *testing.T) {
		repo := &secretsMocks.MockSecretRepository{}
		wrapper := &cryptoMocks.MockKeyWrapper{}
		hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})
		wrapper.On("KeyID").Return("sek")
		wrapper.On("Wrap", hasDeadline, mock.Anything).
			Return(cryptoDomain.WrappedKey{Ciphertext: []byte("blob"), KeyID: "sek", KeyVersion: 4}, nil).
			Once()
		repo.On("Create", hasDeadline, mock.MatchedBy(func(r *secretsDomain.SecretRecord) bool {
			return r.KeyVersion == 4 && bytes.Equal(r.WrappedDEK, []byte("blob"))
		})).Return(nil).Once()

		uc := NewSecretUseCase(
			repo,
			cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()),
			wrapper,
			Config{KMSTimeout: time.Second, DBTimeout: time.Second},
		)
		_, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
		require.NoError(t, err)

		wrapper.AssertExpectations(t)
		repo.AssertExpectations(t)
	})
}

func TestSecretUseCase_StoreSecret_RepositoryError(t *testing.T) {
	repo := &secretsMocks.MockSecretRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), newLocalWrapper(t), Config{})
	meta, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
	assert.Nil(t, meta)
	assert.EqualError(t, err, "connection reset")
	repo.AssertExpectations(t)
}

func TestSecretUseCase_RevealSecret_Guard(t *testing.T) {
	uc, _ := newTestUseCase(t, Config{})
	meta, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"no identity", context.Background(), authDomain.ErrTokenInvalid},
		{"other tenant", fullAccess("t2"), authDomain.ErrCrossTenantDenied},
		{
			"other tenant without read scope",
			asCaller("t2", "svc", authDomain.ScopeSecretWrite),
			authDomain.ErrCrossTenantDenied,
		},
		{"missing read scope", asCaller("t1", "svc", authDomain.ScopeSecretWrite), authDomain.ErrInsufficientScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := uc.RevealSecret(tt.ctx, meta.ID)
			assert.Nil(t, plaintext)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("same tenant different subject", func(t *testing.T) {
		plaintext, err := uc.RevealSecret(asCaller("t1", "bob", authDomain.ScopeSecretRead), meta.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("secret"), plaintext)
	})
}

func TestSecretUseCase_RevealSecret_NoUnwrapBeforeGuard(t *testing.T) {
	record := &secretsDomain.SecretRecord{ID: uuid.Must(uuid.NewV7()), TenantID: "t1", OwnerID: "alice", KeyID: "sek"}
	repo := &secretsMocks.MockSecretRepository{}
	repo.On("Get", mock.Anything, record.ID).Return(record, nil)
	wrapper := &cryptoMocks.MockKeyWrapper{}

	uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), wrapper, Config{})

	_, err := uc.RevealSecret(fullAccess("t2"), record.ID)
	assert.ErrorIs(t, err, authDomain.ErrCrossTenantDenied)
	_, err = uc.RevealSecret(asCaller("t1", "svc"), record.ID)
	assert.ErrorIs(t, err, authDomain.ErrInsufficientScope)

	wrapper.AssertNotCalled(t, "Unwrap", mock.Anything, mock.Anything)
}

func TestSecretUseCase_NotFound(t *testing.T) {
	uc, _ := newTestUseCase(t, Config{})
	ctx := fullAccess("t1")
	id := uuid.Must(uuid.NewV7())

	_, err := uc.RevealSecret(ctx, id)
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = uc.GetSecretMeta(ctx, id)
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
}

func TestSecretUseCase_GetSecretMeta_OwnershipOnly(t *testing.T) {
	uc, _ := newTestUseCase(t, Config{})
	meta, err := uc.StoreSecret(fullAccess("t1"), "t1", "alice", []byte("secret"))
	require.NoError(t, err)

	got, err := uc.GetSecretMeta(asCaller("t1", "auditor"), meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, got.ID)

	_, err = uc.GetSecretMeta(fullAccess("t2"), meta.ID)
	assert.ErrorIs(t, err, authDomain.ErrCrossTenantDenied)
}

// Stored fields are bound to the ciphertext; altering any of them breaks decryption.
func TestSecretUseCase_RevealSecret_TamperedRecord(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*secretsDomain.SecretRecord)
	}{
		{"owner", func(r *secretsDomain.SecretRecord) { r.OwnerID = "mallory" }},
		{"ciphertext", func(r *secretsDomain.SecretRecord) { r.Ciphertext[0] ^= 0x01 }},
		{"tag", func(r *secretsDomain.SecretRecord) { r.Tag[len(r.Tag)-1] ^= 0x80 }},
		{"iv", func(r *secretsDomain.SecretRecord) { r.IV[0] ^= 0x01 }},
		{"algorithm", func(r *secretsDomain.SecretRecord) { r.Algorithm = cryptoDomain.ChaCha20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo := newTestUseCase(t, Config{})
			ctx := fullAccess("t1")
			meta, err := uc.StoreSecret(ctx, "t1", "alice", []byte("secret"))
			require.NoError(t, err)

			repo.mutate(meta.ID, tt.mutate)

			plaintext, err := uc.RevealSecret(ctx, meta.ID)
			assert.Nil(t, plaintext)
			assert.ErrorIs(t, err, apperrors.ErrAuthenticationFailure)
		})
	}
}

func TestSecretUseCase_RevealSecret_UnwrapFailure(t *testing.T) {
	record := &secretsDomain.SecretRecord{
		ID:        uuid.Must(uuid.NewV7()),
		TenantID:  "t1",
		OwnerID:   "alice",
		KeyID:     "sek",
		Algorithm: cryptoDomain.AESGCM,
	}
	repo := &secretsMocks.MockSecretRepository{}
	repo.On("Get", mock.Anything, record.ID).Return(record, nil)
	wrapper := &cryptoMocks.MockKeyWrapper{}
	wrapper.On("Unwrap", mock.Anything, record.WrappedKey()).
		Return(nil, cryptoDomain.ErrKeyServiceUnavailable).
		Once()

	uc := NewSecretUseCase(repo, cryptoService.NewEnvelopeEngine(cryptoService.NewAEADManager()), wrapper, Config{})
	_, err := uc.RevealSecret(fullAccess("t1"), record.ID)
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyServiceUnavailable)
	wrapper.AssertExpectations(t)
}

func TestSecretUseCase_IVUniqueness(t *testing.T) {
	uc, repo := newTestUseCase(t, Config{})
	ctx := fullAccess("t1")

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		meta, err := uc.StoreSecret(ctx, "t1", "alice", []byte("same plaintext"))
		require.NoError(t, err)
		record, err := repo.Get(ctx, meta.ID)
		require.NoError(t, err)
		_, dup := seen[string(record.IV)]
		require.False(t, dup, "IV reused")
		seen[string(record.IV)] = struct{}{}
	}
}
