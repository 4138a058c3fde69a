package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

// These tests pin the SQL contract of PostgresStore: which statements run,
// which locks are taken inside a transaction, and how driver results map to
// sentinel errors. Behaviour against a real server is covered by the
// integration suite.

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var recordCols = []string{"account_id", "name", "email", "date_of_birth", "document_ref", "verified", "verified_by", "verified_at", "registered_at"}

func TestPostgresStore_CreateRecord(t *testing.T) {
	ctx := context.Background()
	account := id.NewAccountID()
	rec := newRecord(t, account)

	t.Run("inserts", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identity_records")).
			WithArgs(account.String(), "Alice", "a@x.com", int64(100), "hash1", rec.RegisteredAt).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(account.String()))
		require.NoError(t, NewPostgres(db).CreateRecord(ctx, rec))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict returns ErrConflict", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identity_records")).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}))
		assert.ErrorIs(t, NewPostgres(db).CreateRecord(ctx, rec), sentinel.ErrConflict)
	})
}

func TestPostgresStore_FindRecord(t *testing.T) {
	ctx := context.Background()
	account := id.NewAccountID()
	verifier := id.NewAccountID()
	registered := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	verified := registered.Add(time.Hour)

	t.Run("maps a verified row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM identity_records WHERE account_id = $1")).
			WithArgs(account.String()).
			WillReturnRows(sqlmock.NewRows(recordCols).
				AddRow(account.String(), "Alice", "a@x.com", int64(100), "hash1", true, verifier.String(), verified, registered))

		rec, err := NewPostgres(db).FindRecord(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, account, rec.AccountID)
		assert.True(t, rec.Verified)
		assert.Equal(t, verifier, rec.VerifiedBy)
		assert.Equal(t, verified, rec.VerifiedAt)
		assert.Equal(t, registered, rec.RegisteredAt)
	})

	t.Run("maps an unverified row with NULLs", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM identity_records")).
			WillReturnRows(sqlmock.NewRows(recordCols).
				AddRow(account.String(), "Alice", "a@x.com", int64(100), "hash1", false, nil, nil, registered))

		rec, err := NewPostgres(db).FindRecord(ctx, account)
		require.NoError(t, err)
		assert.False(t, rec.Verified)
		assert.True(t, rec.VerifiedBy.IsNil())
		assert.True(t, rec.VerifiedAt.IsZero())
	})

	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM identity_records")).
			WillReturnRows(sqlmock.NewRows(recordCols))
		_, err := NewPostgres(db).FindRecord(ctx, account)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("locks the row inside a transaction", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE account_id = $1 FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(recordCols).
				AddRow(account.String(), "Alice", "a@x.com", int64(100), "hash1", false, nil, nil, registered))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		_, err = NewPostgresTx(tx).FindRecordForUpdate(ctx, account)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_UpdateVerification(t *testing.T) {
	ctx := context.Background()
	rec := newRecord(t, id.NewAccountID())
	verifier := id.NewAccountID()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Verify(verifier, at))

	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE identity_records")).
		WithArgs(rec.AccountID.String(), true, verifier.String(), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE identity_records")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgres(db)
	require.NoError(t, s.UpdateVerification(ctx, rec))
	assert.ErrorIs(t, s.UpdateVerification(ctx, rec), sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Verifiers(t *testing.T) {
	ctx := context.Background()
	v := id.NewAccountID()
	now := time.Now()

	t.Run("membership check takes a share lock in a transaction", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM verifiers WHERE account_id = $1 FOR SHARE")).
			WithArgs(v.String()).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		ok, err := NewPostgresTx(tx).IsVerifier(ctx, v)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-member", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM verifiers")).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
		ok, err := NewPostgres(db).IsVerifier(ctx, v)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate grant maps unique violation to ErrConflict", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verifiers")).
			WithArgs(v.String(), now).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, NewPostgres(db).AddVerifier(ctx, v, now), sentinel.ErrConflict)
	})

	t.Run("other insert errors are wrapped", func(t *testing.T) {
		db, mock := newMock(t)
		boom := errors.New("connection reset")
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verifiers")).WillReturnError(boom)
		err := NewPostgres(db).AddVerifier(ctx, v, now)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("removing a non-member is ErrNotFound", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM verifiers")).
			WithArgs(v.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, NewPostgres(db).RemoveVerifier(ctx, v), sentinel.ErrNotFound)
	})
}

func TestPostgresStore_EnsureOwner(t *testing.T) {
	ctx := context.Background()
	owner := id.NewAccountID()
	now := time.Now()

	t.Run("matching owner", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registry_owner")).
			WithArgs(owner.String(), now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id FROM registry_owner")).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(owner.String()))
		require.NoError(t, NewPostgres(db).EnsureOwner(ctx, owner, now))
	})

	t.Run("different stored owner", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registry_owner")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id FROM registry_owner")).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(id.NewAccountID().String()))
		assert.ErrorIs(t, NewPostgres(db).EnsureOwner(ctx, owner, now), sentinel.ErrConflict)
	})
}
