package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
	authUsecase "github.com/allisson/sealed/internal/auth/usecase"
)

var (
	_ authUsecase.AuditLogRepository = (*PostgreSQLAuditLogRepository)(nil)
	_ authUsecase.AuditLogRepository = (*MySQLAuditLogRepository)(nil)
)

var auditLogColumns = []string{
	"id", "request_id", "tenant_id", "subject", "operation", "secret_id", "outcome", "metadata", "created_at",
}

var (
	insertAuditLogQuery = regexp.QuoteMeta("INSERT INTO audit_logs (id, request_id, tenant_id")
	selectAuditLogQuery = regexp.QuoteMeta("SELECT id, request_id, tenant_id")
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newAuditLog() *authDomain.AuditLog {
	return &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: "req-1",
		TenantID:  "t1",
		Subject:   "svc-a",
		Operation: "revealSecret",
		SecretID:  uuid.NullUUID{UUID: uuid.Must(uuid.NewV7()), Valid: true},
		Outcome:   "success",
		Metadata:  map[string]any{"owner_id": "alice"},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("with metadata and secret id", func(t *testing.T) {
		db, mock := newMockDB(t)
		auditLog := newAuditLog()

		mock.ExpectExec(insertAuditLogQuery).WithArgs(
			auditLog.ID,
			"req-1",
			"t1",
			"svc-a",
			"revealSecret",
			auditLog.SecretID.UUID.String(),
			"success",
			[]byte(`{"owner_id":"alice"}`),
			auditLog.CreatedAt,
		).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgreSQLAuditLogRepository(db).Create(ctx, auditLog))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unset secret id and metadata are null", func(t *testing.T) {
		db, mock := newMockDB(t)
		auditLog := newAuditLog()
		auditLog.SecretID = uuid.NullUUID{}
		auditLog.Metadata = nil

		mock.ExpectExec(insertAuditLogQuery).WithArgs(
			auditLog.ID, "req-1", "t1", "svc-a", "revealSecret", nil, "success", nil, auditLog.CreatedAt,
		).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgreSQLAuditLogRepository(db).Create(ctx, auditLog))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insertAuditLogQuery).WillReturnError(errors.New("connection refused"))

		err := NewPostgreSQLAuditLogRepository(db).Create(ctx, newAuditLog())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create audit log")
	})

	t.Run("unmarshalable metadata", func(t *testing.T) {
		db, _ := newMockDB(t)
		auditLog := newAuditLog()
		auditLog.Metadata = map[string]any{"bad": make(chan int)}

		err := NewPostgreSQLAuditLogRepository(db).Create(ctx, auditLog)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal audit log metadata")
	})
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	ctx := context.Background()
	auditLog := newAuditLog()

	t.Run("without filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows(auditLogColumns).
			AddRow(auditLog.ID.String(), "req-1", "t1", "svc-a", "revealSecret",
				auditLog.SecretID.UUID.String(), "success", []byte(`{"owner_id":"alice"}`), auditLog.CreatedAt).
			AddRow(uuid.Must(uuid.NewV7()).String(), "", "", "", "storeSecret", nil, "invalid", nil, auditLog.CreatedAt)

		mock.ExpectQuery(selectAuditLogQuery + ".*ORDER BY created_at DESC LIMIT \\$1 OFFSET \\$2").
			WithArgs(10, 0).
			WillReturnRows(rows)

		logs, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 0, 10, nil, nil)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, auditLog.ID, logs[0].ID)
		assert.Equal(t, auditLog.SecretID, logs[0].SecretID)
		assert.Equal(t, "alice", logs[0].Metadata["owner_id"])
		assert.False(t, logs[1].SecretID.Valid)
		assert.Nil(t, logs[1].Metadata)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with time bounds", func(t *testing.T) {
		db, mock := newMockDB(t)
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := from.Add(24 * time.Hour)

		mock.ExpectQuery(selectAuditLogQuery +
			".*WHERE created_at >= \\$1 AND created_at <= \\$2 ORDER BY created_at DESC LIMIT \\$3 OFFSET \\$4").
			WithArgs(from, to, 5, 5).
			WillReturnRows(sqlmock.NewRows(auditLogColumns))

		logs, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 5, 5, &from, &to)
		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.NotNil(t, logs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectAuditLogQuery).WillReturnError(errors.New("boom"))

		_, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 0, 10, nil, nil)
		assert.Error(t, err)
	})
}

func TestPostgreSQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Now().UTC()

	t.Run("dry run counts", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE created_at < $1")).
			WithArgs(cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := NewPostgreSQLAuditLogRepository(db).DeleteOlderThan(ctx, cutoff, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete returns affected rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE created_at < $1")).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewPostgreSQLAuditLogRepository(db).DeleteOlderThan(ctx, cutoff, false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("binary ids", func(t *testing.T) {
		db, mock := newMockDB(t)
		auditLog := newAuditLog()
		id, _ := auditLog.ID.MarshalBinary()
		secretID, _ := auditLog.SecretID.UUID.MarshalBinary()

		mock.ExpectExec(insertAuditLogQuery).WithArgs(
			id, "req-1", "t1", "svc-a", "revealSecret", secretID, "success",
			[]byte(`{"owner_id":"alice"}`), auditLog.CreatedAt,
		).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMySQLAuditLogRepository(db).Create(ctx, auditLog))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unset secret id is null", func(t *testing.T) {
		db, mock := newMockDB(t)
		auditLog := newAuditLog()
		auditLog.SecretID = uuid.NullUUID{}
		id, _ := auditLog.ID.MarshalBinary()

		mock.ExpectExec(insertAuditLogQuery).WithArgs(
			id, "req-1", "t1", "svc-a", "revealSecret", nil, "success",
			[]byte(`{"owner_id":"alice"}`), auditLog.CreatedAt,
		).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMySQLAuditLogRepository(db).Create(ctx, auditLog))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	ctx := context.Background()
	auditLog := newAuditLog()
	id, _ := auditLog.ID.MarshalBinary()
	secretID, _ := auditLog.SecretID.UUID.MarshalBinary()

	t.Run("decodes binary ids", func(t *testing.T) {
		db, mock := newMockDB(t)
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(auditLogColumns).
			AddRow(id, "req-1", "t1", "svc-a", "revealSecret", secretID, "success", nil, auditLog.CreatedAt)

		mock.ExpectQuery(selectAuditLogQuery + ".*WHERE created_at >= \\? ORDER BY created_at DESC LIMIT \\? OFFSET \\?").
			WithArgs(from, 10, 0).
			WillReturnRows(rows)

		logs, err := NewMySQLAuditLogRepository(db).List(ctx, 0, 10, &from, nil)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, auditLog.ID, logs[0].ID)
		assert.Equal(t, auditLog.SecretID, logs[0].SecretID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows(auditLogColumns).
			AddRow([]byte{1, 2, 3}, "", "", "", "storeSecret", nil, "error", nil, auditLog.CreatedAt)
		mock.ExpectQuery(selectAuditLogQuery).WillReturnRows(rows)

		_, err := NewMySQLAuditLogRepository(db).List(ctx, 0, 10, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal audit log id")
	})
}

func TestMySQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Now().UTC()

	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE created_at < ?")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := NewMySQLAuditLogRepository(db).DeleteOlderThan(ctx, cutoff, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
