// Package mocks provides mock implementations of crypto services for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// MockKeyWrapper is a mock implementation of KeyWrapper for testing.
type MockKeyWrapper struct {
	mock.Mock
}

// KeyID mocks the KeyID method of KeyWrapper.
func (m *MockKeyWrapper) KeyID() string {
	args := m.Called()
	return args.String(0)
}

// Wrap mocks the Wrap method of KeyWrapper.
func (m *MockKeyWrapper) Wrap(ctx context.Context, dek []byte) (cryptoDomain.WrappedKey, error) {
	args := m.Called(ctx, dek)
	return args.Get(0).(cryptoDomain.WrappedKey), args.Error(1)
}

// Unwrap mocks the Unwrap method of KeyWrapper.
func (m *MockKeyWrapper) Unwrap(ctx context.Context, wrapped cryptoDomain.WrappedKey) ([]byte, error) {
	args := m.Called(ctx, wrapped)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
