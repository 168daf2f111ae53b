// Package domain defines the sealed secret record and its public metadata.
// Records are written once and never mutated.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
)

// SecretRecord is the persisted form of one secret.
type SecretRecord struct {
	// ID is the record identifier (UUIDv7). It is part of the associated data.
	ID       uuid.UUID
	TenantID string
	OwnerID  string
	// KeyID and KeyVersion identify the KMS key generation that wrapped the DEK.
	KeyID      string
	KeyVersion int
	// WrappedDEK is the data encryption key as returned by the KMS.
	WrappedDEK []byte
	IV         []byte
	Tag        []byte
	Ciphertext []byte
	Algorithm  cryptoDomain.Algorithm
	// CreatedAt is the UTC creation time.
	CreatedAt time.Time
}

// SecretMeta is the metadata of a secret. It never carries key or ciphertext material.
type SecretMeta struct {
	ID        uuid.UUID
	TenantID  string
	OwnerID   string
	CreatedAt time.Time
}

// Meta returns the public metadata of the record.
func (r *SecretRecord) Meta() *SecretMeta {
	return &SecretMeta{
		ID:        r.ID,
		TenantID:  r.TenantID,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
	}
}

// IdentityTuple returns the associated data the record's ciphertext is bound to.
func (r *SecretRecord) IdentityTuple() cryptoDomain.IdentityTuple {
	return cryptoDomain.IdentityTuple{
		TenantID: r.TenantID,
		OwnerID:  r.OwnerID,
		RecordID: r.ID.String(),
		KeyID:    r.KeyID,
	}
}

// WrappedKey returns the wrapped DEK in the form the key wrapper expects.
func (r *SecretRecord) WrappedKey() cryptoDomain.WrappedKey {
	return cryptoDomain.WrappedKey{
		Ciphertext: r.WrappedDEK,
		KeyID:      r.KeyID,
		KeyVersion: r.KeyVersion,
	}
}

// SealedPayload returns the encrypted payload fields.
func (r *SecretRecord) SealedPayload() cryptoDomain.SealedPayload {
	return cryptoDomain.SealedPayload{
		IV:         r.IV,
		Ciphertext: r.Ciphertext,
		Tag:        r.Tag,
	}
}

// ResourceTenantID returns the owning tenant for authorization checks.
func (r *SecretRecord) ResourceTenantID() string {
	return r.TenantID
}
