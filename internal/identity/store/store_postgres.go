package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

// PostgresStore persists records and verifier membership in PostgreSQL.
// When bound to a transaction, lookups used for check-then-write take row
// locks so concurrent operations on the same account serialize.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

const recordColumns = `account_id, name, email, date_of_birth, document_ref, verified, verified_by, verified_at, registered_at`

func (s *PostgresStore) CreateRecord(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO identity_records (account_id, name, email, date_of_birth, document_ref, verified, verified_by, verified_at, registered_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NULL, NULL, $6)
		ON CONFLICT (account_id) DO NOTHING
		RETURNING account_id
	`
	var stored uuid.UUID
	err := s.execer().QueryRowContext(ctx, query,
		record.AccountID.UUID(),
		record.Name,
		record.Email,
		record.DateOfBirth,
		record.DocumentRef,
		record.RegisteredAt,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create identity record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindRecord(ctx context.Context, accountID id.AccountID) (*models.Record, error) {
	return s.findRecord(ctx, accountID, "")
}

// FindRecordForUpdate locks the row until the surrounding transaction ends.
// Outside a transaction it behaves like FindRecord.
func (s *PostgresStore) FindRecordForUpdate(ctx context.Context, accountID id.AccountID) (*models.Record, error) {
	if s.tx == nil {
		return s.FindRecord(ctx, accountID)
	}
	return s.findRecord(ctx, accountID, " FOR UPDATE")
}

func (s *PostgresStore) findRecord(ctx context.Context, accountID id.AccountID, lock string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM identity_records WHERE account_id = $1` + lock
	record, err := scanRecord(s.execer().QueryRowContext(ctx, query, accountID.UUID()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) RecordExists(ctx context.Context, accountID id.AccountID) (bool, error) {
	var exists bool
	err := s.execer().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM identity_records WHERE account_id = $1)`,
		accountID.UUID(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity record: %w", err)
	}
	return exists, nil
}

// UpdateVerification writes the verification fields. The verified = FALSE
// guard keeps the transition one-way even if a caller skipped the lock.
func (s *PostgresStore) UpdateVerification(ctx context.Context, record *models.Record) error {
	query := `
		UPDATE identity_records
		SET verified = $2, verified_by = $3, verified_at = $4
		WHERE account_id = $1 AND verified = FALSE
	`
	res, err := s.execer().ExecContext(ctx, query,
		record.AccountID.UUID(),
		record.Verified,
		nullableAccount(record.VerifiedBy),
		nullableTime(record.VerifiedAt),
	)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// IsVerifier takes a shared lock on the membership row inside a transaction,
// so a concurrent revoke waits until the caller's operation commits.
func (s *PostgresStore) IsVerifier(ctx context.Context, accountID id.AccountID) (bool, error) {
	query := `SELECT 1 FROM verifiers WHERE account_id = $1`
	if s.tx != nil {
		query += ` FOR SHARE`
	}
	var one int
	err := s.execer().QueryRowContext(ctx, query, accountID.UUID()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) AddVerifier(ctx context.Context, accountID id.AccountID, at time.Time) error {
	_, err := s.execer().ExecContext(ctx,
		`INSERT INTO verifiers (account_id, authorized_at) VALUES ($1, $2)`,
		accountID.UUID(), at,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("add verifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveVerifier(ctx context.Context, accountID id.AccountID) error {
	res, err := s.execer().ExecContext(ctx, `DELETE FROM verifiers WHERE account_id = $1`, accountID.UUID())
	if err != nil {
		return fmt.Errorf("remove verifier: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove verifier rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// EnsureOwner stores owner in the single-row registry_owner table on first
// start and fails with ErrConflict if a different owner was stored before.
func (s *PostgresStore) EnsureOwner(ctx context.Context, owner id.AccountID, at time.Time) error {
	_, err := s.execer().ExecContext(ctx, `
		INSERT INTO registry_owner (singleton, account_id, created_at)
		VALUES (TRUE, $1, $2)
		ON CONFLICT (singleton) DO NOTHING
	`, owner.UUID(), at)
	if err != nil {
		return fmt.Errorf("insert registry owner: %w", err)
	}
	var stored uuid.UUID
	if err := s.execer().QueryRowContext(ctx, `SELECT account_id FROM registry_owner WHERE singleton`).Scan(&stored); err != nil {
		return fmt.Errorf("read registry owner: %w", err)
	}
	if id.AccountID(stored) != owner {
		return sentinel.ErrConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullableAccount(a id.AccountID) any {
	if a.IsNil() {
		return nil
	}
	return a.UUID()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.Record, error) {
	var (
		rec        models.Record
		accountID  uuid.UUID
		verifiedBy uuid.NullUUID
		verifiedAt sql.NullTime
	)
	if err := row.Scan(
		&accountID,
		&rec.Name,
		&rec.Email,
		&rec.DateOfBirth,
		&rec.DocumentRef,
		&rec.Verified,
		&verifiedBy,
		&verifiedAt,
		&rec.RegisteredAt,
	); err != nil {
		return nil, err
	}
	rec.AccountID = id.AccountID(accountID)
	rec.RegisteredAt = rec.RegisteredAt.UTC()
	if verifiedBy.Valid {
		rec.VerifiedBy = id.AccountID(verifiedBy.UUID)
	}
	if verifiedAt.Valid {
		rec.VerifiedAt = verifiedAt.Time.UTC()
	}
	return &rec, nil
}
