// Package domain provides type-safe identifiers shared across the registry.
package domain

import (
	"github.com/google/uuid"

	dErrors "idregistry/pkg/domain-errors"
)

// AccountID identifies an account holder. It is the only identity the registry
// knows about; callers, verification targets, verifiers and the owner are all
// AccountIDs.
type AccountID uuid.UUID

// NilAccountID is the null identifier. It never owns a record and can never be
// granted the verifier role.
var NilAccountID = AccountID(uuid.Nil)

// ParseAccountID parses a textual account identifier at a trust boundary.
// The nil UUID parses successfully; rejecting it is a business rule enforced by
// the service so that lookups still report "not found" consistently.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return NilAccountID, dErrors.New(dErrors.CodeInvalidInput, "account ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return NilAccountID, dErrors.New(dErrors.CodeInvalidInput, "invalid account ID format")
	}
	return AccountID(id), nil
}

// NewAccountID returns a random account identifier.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// UUID exposes the underlying value for drivers and encoders.
func (id AccountID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
