package testutil

import (
	"fmt"
	"time"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
)

// RegistrationBuilder provides a fluent API for building registrations.
type RegistrationBuilder struct {
	reg models.Registration
}

// NewRegistrationBuilder starts from a registration that passes validation.
func NewRegistrationBuilder() *RegistrationBuilder {
	return &RegistrationBuilder{reg: models.Registration{
		Name:        "Alice",
		Email:       "alice@example.com",
		DateOfBirth: 631152000,
		DocumentRef: "sha256:4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
	}}
}

func (b *RegistrationBuilder) WithName(name string) *RegistrationBuilder {
	b.reg.Name = name
	return b
}

func (b *RegistrationBuilder) WithEmail(email string) *RegistrationBuilder {
	b.reg.Email = email
	return b
}

func (b *RegistrationBuilder) WithDateOfBirth(dob int64) *RegistrationBuilder {
	b.reg.DateOfBirth = dob
	return b
}

func (b *RegistrationBuilder) WithDocumentRef(ref string) *RegistrationBuilder {
	b.reg.DocumentRef = ref
	return b
}

func (b *RegistrationBuilder) Build() models.Registration {
	return b.reg
}

// NewTestRecord returns a record for accountID, verified by verifier unless
// verifier is the null identifier. It panics on invalid input.
func NewTestRecord(accountID, verifier id.AccountID, at time.Time) *models.Record {
	rec, err := models.NewRecord(accountID, NewRegistrationBuilder().Build(), at)
	if err != nil {
		panic(fmt.Sprintf("NewTestRecord: %v", err))
	}
	if !verifier.IsNil() {
		if err := rec.Verify(verifier, at.Add(time.Hour)); err != nil {
			panic(fmt.Sprintf("NewTestRecord: %v", err))
		}
	}
	return rec
}
