package models

import (
	"errors"
	"time"

	id "idregistry/pkg/domain"
	dErrors "idregistry/pkg/domain-errors"
)

// Field errors for registration input. They are wrapped in an invalid_input
// domain error so callers can match the failing field with errors.Is.
var (
	ErrNilAccount         = errors.New("account ID must not be the null identifier")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrEmptyEmail         = errors.New("email must not be empty")
	ErrInvalidDateOfBirth = errors.New("date of birth must be a positive timestamp")
	ErrEmptyDocumentRef   = errors.New("document reference must not be empty")
)

// Record is the self-asserted identity of one account.
//
// A Record exists from the moment it is registered and is never deleted.
// Verified moves from false to true at most once; VerifiedBy and VerifiedAt
// are zero exactly when Verified is false.
//
// Email and DateOfBirth are accepted as supplied. Only emptiness and
// positivity are checked; there is no format or uniqueness validation.
type Record struct {
	AccountID    id.AccountID
	Name         string
	Email        string
	DateOfBirth  int64 // seconds, caller supplied
	DocumentRef  string
	Verified     bool
	VerifiedBy   id.AccountID
	VerifiedAt   time.Time
	RegisteredAt time.Time
}

// Registration is the caller-supplied part of a Record.
type Registration struct {
	Name        string
	Email       string
	DateOfBirth int64
	DocumentRef string
}

// Validate reports the first invalid field, in declaration order.
func (r Registration) Validate() error {
	switch {
	case r.Name == "":
		return invalid(ErrEmptyName)
	case r.Email == "":
		return invalid(ErrEmptyEmail)
	case r.DateOfBirth <= 0:
		return invalid(ErrInvalidDateOfBirth)
	case r.DocumentRef == "":
		return invalid(ErrEmptyDocumentRef)
	}
	return nil
}

// NewRecord creates an unverified Record with domain invariant checks.
func NewRecord(accountID id.AccountID, reg Registration, registeredAt time.Time) (*Record, error) {
	if accountID.IsNil() {
		return nil, invalid(ErrNilAccount)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if registeredAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration time required")
	}
	return &Record{
		AccountID:    accountID,
		Name:         reg.Name,
		Email:        reg.Email,
		DateOfBirth:  reg.DateOfBirth,
		DocumentRef:  reg.DocumentRef,
		RegisteredAt: registeredAt,
	}, nil
}

// Verify marks the record verified by verifier at the given time. Role checks
// are the caller's responsibility; Verify only guards the state transition.
func (r *Record) Verify(verifier id.AccountID, at time.Time) error {
	if r.Verified {
		return dErrors.New(dErrors.CodeAlreadyVerified, "identity already verified")
	}
	if verifier.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "verifier required")
	}
	if at.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "verification time required")
	}
	r.Verified = true
	r.VerifiedBy = verifier
	r.VerifiedAt = at
	return nil
}

// Summary returns the publicly disclosable projection of the record.
// The name is part of it on purpose.
func (r *Record) Summary() *Summary {
	return &Summary{
		AccountID:  r.AccountID,
		Name:       r.Name,
		Verified:   r.Verified,
		VerifiedBy: r.VerifiedBy,
		VerifiedAt: r.VerifiedAt,
	}
}

// Summary is the public view of a Record.
type Summary struct {
	AccountID  id.AccountID `json:"account_id"`
	Name       string       `json:"name"`
	Verified   bool         `json:"verified"`
	VerifiedBy id.AccountID `json:"verified_by"`
	VerifiedAt time.Time    `json:"verified_at"`
}

func invalid(field error) error {
	return dErrors.Wrap(field, dErrors.CodeInvalidInput, field.Error())
}
