package handler

import (
	"idregistry/internal/identity/models"
	"idregistry/pkg/validation"
)

// RegisterRequest is the body of POST /identities. Field contents are checked
// by the registry itself, after the duplicate-registration check; only sizes
// are bounded here.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth int64  `json:"date_of_birth"`
	DocumentRef string `json:"document_ref"`
}

func (r *RegisterRequest) Validate() error {
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	return validation.CheckStringLength("document_ref", r.DocumentRef, validation.MaxDocumentRefLength)
}

func (r *RegisterRequest) toRegistration() models.Registration {
	return models.Registration{
		Name:        r.Name,
		Email:       r.Email,
		DateOfBirth: r.DateOfBirth,
		DocumentRef: r.DocumentRef,
	}
}

// AuthorizeVerifierRequest is the body of POST /verifiers. AccountID is parsed
// by the handler with the same rules as account IDs in paths.
type AuthorizeVerifierRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

func (r *AuthorizeVerifierRequest) Validate() error {
	return validation.Validate(r)
}
