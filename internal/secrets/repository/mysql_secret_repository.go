package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	apperrors "github.com/allisson/sealed/internal/errors"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// mysqlDuplicateEntry is the MySQL error number for a duplicate key.
const mysqlDuplicateEntry = 1062

// MySQLSecretRepository implements SecretRecord persistence for MySQL databases.
// IDs are stored as BINARY(16).
type MySQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new record into the MySQL database.
func (m *MySQLSecretRepository) Create(ctx context.Context, record *secretsDomain.SecretRecord) error {
	query := `INSERT INTO secrets (id, tenant_id, owner_id, key_id, key_version, wrapped_dek, iv, tag, ciphertext, algorithm, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret id")
	}

	_, err = m.db.ExecContext(
		ctx,
		query,
		id,
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a record by its ID.
func (m *MySQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*secretsDomain.SecretRecord, error) {
	query := `SELECT id, tenant_id, owner_id, key_id, key_version, wrapped_dek, iv, tag, ciphertext, algorithm, created_at
			  FROM secrets
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret id")
	}

	var record secretsDomain.SecretRecord
	var rawID []byte
	var algorithm string
	err = m.db.QueryRowContext(ctx, query, idBytes).Scan(
		&rawID,
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

	if err := record.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
	}
	record.Algorithm = cryptoDomain.Algorithm(algorithm)
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// NewMySQLSecretRepository creates a new MySQL SecretRecord repository instance.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}
