package handler

import (
	"time"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
)

// RecordResponse is the full record, returned only to its owner.
type RecordResponse struct {
	AccountID    string     `json:"account_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	DateOfBirth  int64      `json:"date_of_birth"`
	DocumentRef  string     `json:"document_ref"`
	Verified     bool       `json:"verified"`
	VerifiedBy   *string    `json:"verified_by"`
	VerifiedAt   *time.Time `json:"verified_at"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// SummaryResponse is the public view of a record. VerifiedBy and VerifiedAt
// are null until the record is verified.
type SummaryResponse struct {
	AccountID  string     `json:"account_id"`
	Name       string     `json:"name"`
	Verified   bool       `json:"verified"`
	VerifiedBy *string    `json:"verified_by"`
	VerifiedAt *time.Time `json:"verified_at"`
}

type VerifiedResponse struct {
	AccountID string `json:"account_id"`
	Verified  bool   `json:"verified"`
}

type ExistsResponse struct {
	AccountID string `json:"account_id"`
	Exists    bool   `json:"exists"`
}

type VerifierResponse struct {
	AccountID string `json:"account_id"`
	Verifier  bool   `json:"verifier"`
}

type OwnerResponse struct {
	Owner string `json:"owner"`
}

func toRecordResponse(rec *models.Record) *RecordResponse {
	by, at := verification(rec.Verified, rec.VerifiedBy, rec.VerifiedAt)
	return &RecordResponse{
		AccountID:    rec.AccountID.String(),
		Name:         rec.Name,
		Email:        rec.Email,
		DateOfBirth:  rec.DateOfBirth,
		DocumentRef:  rec.DocumentRef,
		Verified:     rec.Verified,
		VerifiedBy:   by,
		VerifiedAt:   at,
		RegisteredAt: rec.RegisteredAt,
	}
}

func toSummaryResponse(summary *models.Summary) *SummaryResponse {
	by, at := verification(summary.Verified, summary.VerifiedBy, summary.VerifiedAt)
	return &SummaryResponse{
		AccountID:  summary.AccountID.String(),
		Name:       summary.Name,
		Verified:   summary.Verified,
		VerifiedBy: by,
		VerifiedAt: at,
	}
}

func verification(verified bool, by id.AccountID, at time.Time) (*string, *time.Time) {
	if !verified {
		return nil, nil
	}
	verifier := by.String()
	return &verifier, &at
}
