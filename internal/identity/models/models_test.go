package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "idregistry/pkg/domain"
	dErrors "idregistry/pkg/domain-errors"
)

// Record construction and the single verification transition are pure domain
// rules, so they are covered here directly rather than through the service.

var registeredAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func validRegistration() Registration {
	return Registration{Name: "Alice", Email: "a@x.com", DateOfBirth: 100, DocumentRef: "hash1"}
}

func TestNewRecord(t *testing.T) {
	account := id.NewAccountID()

	t.Run("creates an unverified record", func(t *testing.T) {
		rec, err := NewRecord(account, validRegistration(), registeredAt)
		require.NoError(t, err)
		assert.Equal(t, account, rec.AccountID)
		assert.Equal(t, "Alice", rec.Name)
		assert.Equal(t, "a@x.com", rec.Email)
		assert.Equal(t, int64(100), rec.DateOfBirth)
		assert.Equal(t, "hash1", rec.DocumentRef)
		assert.False(t, rec.Verified)
		assert.True(t, rec.VerifiedBy.IsNil())
		assert.True(t, rec.VerifiedAt.IsZero())
	})

	t.Run("accepts any non-empty email and positive date", func(t *testing.T) {
		reg := validRegistration()
		reg.Email = "not an email"
		reg.DateOfBirth = 1
		_, err := NewRecord(account, reg, registeredAt)
		require.NoError(t, err)
	})

	fieldCases := []struct {
		name   string
		mutate func(*Registration)
		want   error
	}{
		{"empty name", func(r *Registration) { r.Name = "" }, ErrEmptyName},
		{"empty email", func(r *Registration) { r.Email = "" }, ErrEmptyEmail},
		{"zero date of birth", func(r *Registration) { r.DateOfBirth = 0 }, ErrInvalidDateOfBirth},
		{"negative date of birth", func(r *Registration) { r.DateOfBirth = -5 }, ErrInvalidDateOfBirth},
		{"empty document reference", func(r *Registration) { r.DocumentRef = "" }, ErrEmptyDocumentRef},
	}
	for _, tc := range fieldCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)
			_, err := NewRecord(account, reg, registeredAt)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.True(t, errors.Is(err, tc.want))
		})
	}

	t.Run("rejects the null account", func(t *testing.T) {
		_, err := NewRecord(id.NilAccountID, validRegistration(), registeredAt)
		assert.True(t, errors.Is(err, ErrNilAccount))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("requires a registration time", func(t *testing.T) {
		_, err := NewRecord(account, validRegistration(), time.Time{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestRecordVerify(t *testing.T) {
	verifier := id.NewAccountID()
	at := registeredAt.Add(time.Hour)

	t.Run("sets all verification fields once", func(t *testing.T) {
		rec, err := NewRecord(id.NewAccountID(), validRegistration(), registeredAt)
		require.NoError(t, err)

		require.NoError(t, rec.Verify(verifier, at))
		assert.True(t, rec.Verified)
		assert.Equal(t, verifier, rec.VerifiedBy)
		assert.Equal(t, at, rec.VerifiedAt)

		err = rec.Verify(id.NewAccountID(), at.Add(time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
		assert.Equal(t, verifier, rec.VerifiedBy)
		assert.Equal(t, at, rec.VerifiedAt)
	})

	t.Run("rejects a nil verifier without changing state", func(t *testing.T) {
		rec, err := NewRecord(id.NewAccountID(), validRegistration(), registeredAt)
		require.NoError(t, err)
		err = rec.Verify(id.NilAccountID, at)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.False(t, rec.Verified)
	})
}

func TestRecordSummary(t *testing.T) {
	rec, err := NewRecord(id.NewAccountID(), validRegistration(), registeredAt)
	require.NoError(t, err)
	verifier := id.NewAccountID()
	require.NoError(t, rec.Verify(verifier, registeredAt))

	summary := rec.Summary()
	assert.Equal(t, &Summary{
		AccountID:  rec.AccountID,
		Name:       "Alice",
		Verified:   true,
		VerifiedBy: verifier,
		VerifiedAt: registeredAt,
	}, summary)
}
