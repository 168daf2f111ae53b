package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	apperrors "github.com/allisson/sealed/internal/errors"
	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
	secretsUsecase "github.com/allisson/sealed/internal/secrets/usecase"
)

var (
	_ secretsUsecase.SecretRepository = (*PostgreSQLSecretRepository)(nil)
	_ secretsUsecase.SecretRepository = (*MySQLSecretRepository)(nil)
)

var secretColumns = []string{
	"id", "tenant_id", "owner_id", "key_id", "key_version",
	"wrapped_dek", "iv", "tag", "ciphertext", "algorithm", "created_at",
}

func newRecord() *secretsDomain.SecretRecord {
	return &secretsDomain.SecretRecord{
		ID:         uuid.Must(uuid.NewV7()),
		TenantID:   "t1",
		OwnerID:    "alice",
		KeyID:      "sek",
		KeyVersion: 2,
		WrappedDEK: []byte("vault:v2:wrapped"),
		IV:         make([]byte, cryptoDomain.IVSize),
		Tag:        make([]byte, cryptoDomain.TagSize),
		Ciphertext: []byte("ciphertext"),
		Algorithm:  cryptoDomain.AESGCM,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	insertQuery = regexp.QuoteMeta("INSERT INTO secrets (id, tenant_id, owner_id")
	selectQuery = regexp.QuoteMeta("SELECT id, tenant_id, owner_id")
)

func TestPostgreSQLSecretRepository_Create_Mock(t *testing.T) {
	ctx := context.Background()
	record := newRecord()

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{name: "duplicate id", execErr: &pq.Error{Code: pgUniqueViolation}, wantErr: apperrors.ErrConflict},
		{name: "driver error", execErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			exec := mock.ExpectExec(insertQuery).WithArgs(
				record.ID,
				record.TenantID,
				record.OwnerID,
				record.KeyID,
				record.KeyVersion,
				record.WrappedDEK,
				record.IV,
				record.Tag,
				record.Ciphertext,
				"aes-gcm",
				record.CreatedAt,
			)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := NewPostgreSQLSecretRepository(db).Create(ctx, record)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.ErrorContains(t, err, "failed to create secret")
				assert.ErrorIs(t, err, tt.execErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgreSQLSecretRepository_Get_Mock(t *testing.T) {
	ctx := context.Background()
	record := newRecord()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(record.ID).WillReturnRows(
			sqlmock.NewRows(secretColumns).AddRow(
				record.ID.String(), record.TenantID, record.OwnerID, record.KeyID, record.KeyVersion,
				record.WrappedDEK, record.IV, record.Tag, record.Ciphertext, "aes-gcm", record.CreatedAt,
			),
		)

		got, err := NewPostgreSQLSecretRepository(db).Get(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(record.ID).WillReturnError(sql.ErrNoRows)

		got, err := NewPostgreSQLSecretRepository(db).Get(ctx, record.ID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(record.ID).WillReturnError(errors.New("boom"))

		_, err := NewPostgreSQLSecretRepository(db).Get(ctx, record.ID)
		assert.ErrorContains(t, err, "failed to get secret")
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMySQLSecretRepository_Create_Mock(t *testing.T) {
	ctx := context.Background()
	record := newRecord()
	idBytes, err := record.ID.MarshalBinary()
	require.NoError(t, err)

	t.Run("success stores binary id", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insertQuery).WithArgs(
			idBytes,
			record.TenantID,
			record.OwnerID,
			record.KeyID,
			record.KeyVersion,
			record.WrappedDEK,
			record.IV,
			record.Tag,
			record.Ciphertext,
			"aes-gcm",
			record.CreatedAt,
		).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMySQLSecretRepository(db).Create(ctx, record))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insertQuery).WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry})

		err := NewMySQLSecretRepository(db).Create(ctx, record)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestMySQLSecretRepository_Get_Mock(t *testing.T) {
	ctx := context.Background()
	record := newRecord()
	idBytes, err := record.ID.MarshalBinary()
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(idBytes).WillReturnRows(
			sqlmock.NewRows(secretColumns).AddRow(
				idBytes, record.TenantID, record.OwnerID, record.KeyID, record.KeyVersion,
				record.WrappedDEK, record.IV, record.Tag, record.Ciphertext, "aes-gcm", record.CreatedAt,
			),
		)

		got, err := NewMySQLSecretRepository(db).Get(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(idBytes).WillReturnError(sql.ErrNoRows)

		_, err := NewMySQLSecretRepository(db).Get(ctx, record.ID)
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})

	t.Run("malformed id column", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectQuery).WithArgs(idBytes).WillReturnRows(
			sqlmock.NewRows(secretColumns).AddRow(
				[]byte{0x01}, record.TenantID, record.OwnerID, record.KeyID, record.KeyVersion,
				record.WrappedDEK, record.IV, record.Tag, record.Ciphertext, "aes-gcm", record.CreatedAt,
			),
		)

		_, err := NewMySQLSecretRepository(db).Get(ctx, record.ID)
		assert.ErrorContains(t, err, "failed to unmarshal secret id")
	})
}
