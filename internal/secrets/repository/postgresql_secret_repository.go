// Package repository implements SecretRecord persistence for PostgreSQL and MySQL.
// Records are insert-only: there is no update or delete path.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	apperrors "github.com/allisson/sealed/internal/errors"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgreSQLSecretRepository implements SecretRecord persistence for PostgreSQL databases.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new record into the PostgreSQL database.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, record *secretsDomain.SecretRecord) error {
	query := `INSERT INTO secrets (id, tenant_id, owner_id, key_id, key_version, wrapped_dek, iv, tag, ciphertext, algorithm, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := p.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.TenantID,
		record.OwnerID,
		record.KeyID,
		record.KeyVersion,
		record.WrappedDEK,
		record.IV,
		record.Tag,
		record.Ciphertext,
		string(record.Algorithm),
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a record by its ID.
func (p *PostgreSQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error) {
	query := `SELECT id, tenant_id, owner_id, key_id, key_version, wrapped_dek, iv, tag, ciphertext, algorithm, created_at
			  FROM secrets
			  WHERE id = $1`

	var record secretsDomain.SecretRecord
	var algorithm string
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.TenantID,
		&record.OwnerID,
		&record.KeyID,
		&record.KeyVersion,
		&record.WrappedDEK,
		&record.IV,
		&record.Tag,
		&record.Ciphertext,
		&algorithm,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}

	record.Algorithm = cryptoDomain.Algorithm(algorithm)
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL SecretRecord repository instance.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}
