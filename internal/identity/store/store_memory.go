package store

import (
	"context"
	"sync"
	"time"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

// Error contract shared by all stores:
//   - sentinel.ErrNotFound when a record or verifier does not exist
//   - sentinel.ErrConflict when a create would violate key uniqueness
//   - wrapped infrastructure errors otherwise

// InMemoryStore keeps records and the verifier set in maps. Reads return
// copies so callers cannot mutate stored state.
type InMemoryStore struct {
	mu        sync.RWMutex
	records   map[id.AccountID]*models.Record
	verifiers map[id.AccountID]time.Time
	owner     id.AccountID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records:   make(map[id.AccountID]*models.Record),
		verifiers: make(map[id.AccountID]time.Time),
	}
}

func (s *InMemoryStore) CreateRecord(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.AccountID]; ok {
		return sentinel.ErrConflict
	}
	cp := *record
	s.records[record.AccountID] = &cp
	return nil
}

func (s *InMemoryStore) FindRecord(_ context.Context, accountID id.AccountID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// FindRecordForUpdate is FindRecord; serialization comes from the caller's
// transaction lock.
func (s *InMemoryStore) FindRecordForUpdate(ctx context.Context, accountID id.AccountID) (*models.Record, error) {
	return s.FindRecord(ctx, accountID)
}

func (s *InMemoryStore) RecordExists(_ context.Context, accountID id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[accountID]
	return ok, nil
}

// UpdateVerification persists the verification fields of an unverified
// record. A record that is missing or already verified is ErrNotFound.
func (s *InMemoryStore) UpdateVerification(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[record.AccountID]
	if !ok || rec.Verified {
		return sentinel.ErrNotFound
	}
	rec.Verified = record.Verified
	rec.VerifiedBy = record.VerifiedBy
	rec.VerifiedAt = record.VerifiedAt
	return nil
}

func (s *InMemoryStore) IsVerifier(_ context.Context, accountID id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verifiers[accountID]
	return ok, nil
}

func (s *InMemoryStore) AddVerifier(_ context.Context, accountID id.AccountID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifiers[accountID]; ok {
		return sentinel.ErrConflict
	}
	s.verifiers[accountID] = at
	return nil
}

func (s *InMemoryStore) RemoveVerifier(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifiers[accountID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.verifiers, accountID)
	return nil
}

// EnsureOwner records owner on first use. A different owner afterwards is a
// conflict: ownership is fixed for the life of the registry.
func (s *InMemoryStore) EnsureOwner(_ context.Context, owner id.AccountID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner.IsNil() {
		s.owner = owner
		return nil
	}
	if s.owner != owner {
		return sentinel.ErrConflict
	}
	return nil
}
