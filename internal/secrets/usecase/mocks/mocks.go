// Package mocks provides mock implementations of the secret use case and repository for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

// StoreSecret mocks the StoreSecret method of SecretUseCase.
func (m *MockSecretUseCase) StoreSecret(
	ctx context.Context,
	tenantID, ownerID string,
	plaintext []byte,
) (*secretsDomain.SecretMeta, error) {
	args := m.Called(ctx, tenantID, ownerID, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretMeta), args.Error(1)
}

// GetSecretMeta mocks the GetSecretMeta method of SecretUseCase.
func (m *MockSecretUseCase) GetSecretMeta(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretMeta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretMeta), args.Error(1)
}

// RevealSecret mocks the RevealSecret method of SecretUseCase.
func (m *MockSecretUseCase) RevealSecret(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSecretRepository is a mock implementation of SecretRepository for testing.
type MockSecretRepository struct {
	mock.Mock
}

// Create mocks the Create method of SecretRepository.
func (m *MockSecretRepository) Create(ctx context.Context, record *secretsDomain.SecretRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Get mocks the Get method of SecretRepository.
func (m *MockSecretRepository) Get(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretRecord), args.Error(1)
}
