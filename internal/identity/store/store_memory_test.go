package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

func newRecord(t *testing.T, account id.AccountID) *models.Record {
	t.Helper()
	rec, err := models.NewRecord(account, models.Registration{
		Name: "Alice", Email: "a@x.com", DateOfBirth: 100, DocumentRef: "hash1",
	}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return rec
}

func TestInMemoryStore_Records(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	account := id.NewAccountID()

	_, err := s.FindRecord(ctx, account)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	exists, err := s.RecordExists(ctx, account)
	require.NoError(t, err)
	assert.False(t, exists)

	rec := newRecord(t, account)
	require.NoError(t, s.CreateRecord(ctx, rec))
	assert.ErrorIs(t, s.CreateRecord(ctx, newRecord(t, account)), sentinel.ErrConflict)

	exists, err = s.RecordExists(ctx, account)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("reads are copies", func(t *testing.T) {
		got, err := s.FindRecord(ctx, account)
		require.NoError(t, err)
		got.Name = "Mallory"
		got.Verified = true

		again, err := s.FindRecord(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, "Alice", again.Name)
		assert.False(t, again.Verified)
	})

	t.Run("update verification touches only verification fields", func(t *testing.T) {
		got, err := s.FindRecordForUpdate(ctx, account)
		require.NoError(t, err)
		verifier := id.NewAccountID()
		at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, got.Verify(verifier, at))
		got.Name = "ignored"
		require.NoError(t, s.UpdateVerification(ctx, got))

		stored, err := s.FindRecord(ctx, account)
		require.NoError(t, err)
		assert.True(t, stored.Verified)
		assert.Equal(t, verifier, stored.VerifiedBy)
		assert.Equal(t, at, stored.VerifiedAt)
		assert.Equal(t, "Alice", stored.Name)
	})

	t.Run("update of unknown record", func(t *testing.T) {
		assert.ErrorIs(t, s.UpdateVerification(ctx, newRecord(t, id.NewAccountID())), sentinel.ErrNotFound)
	})
}

func TestInMemoryStore_Verifiers(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	v := id.NewAccountID()
	now := time.Now()

	ok, err := s.IsVerifier(ctx, v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddVerifier(ctx, v, now))
	assert.ErrorIs(t, s.AddVerifier(ctx, v, now), sentinel.ErrConflict)

	ok, err = s.IsVerifier(ctx, v)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveVerifier(ctx, v))
	assert.ErrorIs(t, s.RemoveVerifier(ctx, v), sentinel.ErrNotFound)

	ok, err = s.IsVerifier(ctx, v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryStore_EnsureOwner(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	owner := id.NewAccountID()

	require.NoError(t, s.EnsureOwner(ctx, owner, time.Now()))
	require.NoError(t, s.EnsureOwner(ctx, owner, time.Now()), "same owner is idempotent")
	assert.ErrorIs(t, s.EnsureOwner(ctx, id.NewAccountID(), time.Now()), sentinel.ErrConflict)
}
