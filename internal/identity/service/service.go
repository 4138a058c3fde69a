package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idregistry/contracts/identity"
	"idregistry/internal/identity/metrics"
	"idregistry/internal/identity/models"
	"idregistry/internal/identity/tracer"
	id "idregistry/pkg/domain"
	dErrors "idregistry/pkg/domain-errors"
	"idregistry/pkg/platform/outbox"
	"idregistry/pkg/platform/sentinel"
	"idregistry/pkg/requestcontext"
)

// Store defines persistence for records and the verifier set.
// Error contract:
//   - FindRecord, FindRecordForUpdate, UpdateVerification and RemoveVerifier
//     return sentinel.ErrNotFound when the row does not exist
//   - CreateRecord, AddVerifier and EnsureOwner return sentinel.ErrConflict on
//     a uniqueness violation
type Store interface {
	CreateRecord(ctx context.Context, record *models.Record) error
	FindRecord(ctx context.Context, accountID id.AccountID) (*models.Record, error)
	FindRecordForUpdate(ctx context.Context, accountID id.AccountID) (*models.Record, error)
	RecordExists(ctx context.Context, accountID id.AccountID) (bool, error)
	UpdateVerification(ctx context.Context, record *models.Record) error
	IsVerifier(ctx context.Context, accountID id.AccountID) (bool, error)
	AddVerifier(ctx context.Context, accountID id.AccountID, at time.Time) error
	RemoveVerifier(ctx context.Context, accountID id.AccountID) error
	EnsureOwner(ctx context.Context, owner id.AccountID, at time.Time) error
}

// SummaryCache holds public summaries of verified records. Get returns
// sentinel.ErrNotFound on a miss and sentinel.ErrUnavailable when the cache
// is deliberately bypassed.
type SummaryCache interface {
	Get(ctx context.Context, accountID id.AccountID) (*models.Summary, error)
	Set(ctx context.Context, summary *models.Summary) error
}

// Operation names used for metrics labels.
const (
	opRegister          = "register"
	opVerify            = "verify"
	opPublicSummary     = "public_summary"
	opOwnRecord         = "own_record"
	opAuthorizeVerifier = "authorize_verifier"
	opRevokeVerifier    = "revoke_verifier"
)

type Option func(*Service)

// Service is the identity registry. It is created once with a fixed owner who
// is permanently in the verifier set and is the only account allowed to
// change that set.
type Service struct {
	owner   id.AccountID
	store   Store
	tx      RegistryTx
	cache   SummaryCache
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  tracer.Tracer
}

func New(owner id.AccountID, store Store, tx RegistryTx, opts ...Option) (*Service, error) {
	if owner.IsNil() {
		return nil, dErrors.Wrap(models.ErrNilAccount, dErrors.CodeInvalidInput, "registry owner is required")
	}
	if store == nil || tx == nil {
		return nil, fmt.Errorf("identity service requires a store and a transaction boundary")
	}
	svc := &Service{
		owner:  owner,
		store:  store,
		tx:     tx,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSummaryCache enables caching of verified public summaries.
func WithSummaryCache(c SummaryCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// Owner returns the registry owner.
func (s *Service) Owner() id.AccountID {
	return s.owner
}

// Bootstrap persists the owner on first start and refuses to run against a
// store created for a different owner.
func (s *Service) Bootstrap(ctx context.Context) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context, st Store, _ outbox.Appender) error {
		if err := st.EnsureOwner(ctx, s.owner, now(ctx)); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "registry was created with a different owner")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist registry owner")
		}
		return nil
	})
}

// Register creates the caller's record.
func (s *Service) Register(ctx context.Context, caller id.AccountID, reg models.Registration) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRegister, tracer.String(tracer.AttrCaller, tracer.HashAccount(caller.String())))
	start := time.Now()

	var created *models.Record
	err := requireCaller(caller)
	if err == nil {
		err = s.tx.RunInTx(ctx, func(ctx context.Context, st Store, events outbox.Appender) error {
			exists, err := st.RecordExists(ctx, caller)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check identity record")
			}
			if exists {
				return errAlreadyRegistered()
			}
			at := now(ctx)
			rec, err := models.NewRecord(caller, reg, at)
			if err != nil {
				return err
			}
			if err := st.CreateRecord(ctx, rec); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return errAlreadyRegistered()
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity record")
			}
			created = rec
			return s.appendEvent(ctx, span, events, caller, identity.EventRegistered, identity.Registered{
				Account: caller.String(),
				Name:    rec.Name,
				Time:    at,
			})
		})
	}
	s.finish(span, opRegister, start, err)
	if err != nil {
		return nil, err
	}

	s.incRegistrations()
	s.logInfo(ctx, "identity registered", "account_id", caller.String())
	return created, nil
}

// Verify marks target's record verified by caller.
func (s *Service) Verify(ctx context.Context, caller, target id.AccountID) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrCaller, tracer.HashAccount(caller.String())),
		tracer.String(tracer.AttrAccount, tracer.HashAccount(target.String())),
	)
	start := time.Now()

	var verified *models.Record
	err := requireCaller(caller)
	if err == nil {
		err = s.tx.RunInTx(ctx, func(ctx context.Context, st Store, events outbox.Appender) error {
			allowed, err := s.isVerifier(ctx, st, caller)
			if err != nil {
				return err
			}
			if !allowed {
				return dErrors.New(dErrors.CodeForbidden, "caller is not an authorized verifier")
			}
			rec, err := st.FindRecordForUpdate(ctx, target)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return errRecordNotFound()
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
			}
			at := now(ctx)
			if err := rec.Verify(caller, at); err != nil {
				return err
			}
			if err := st.UpdateVerification(ctx, rec); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					// The guarded update matched nothing: someone verified first.
					return dErrors.New(dErrors.CodeAlreadyVerified, "identity already verified")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification")
			}
			verified = rec
			return s.appendEvent(ctx, span, events, target, identity.EventVerified, identity.Verified{
				Account:  target.String(),
				Verifier: caller.String(),
				Time:     at,
			})
		})
	}
	s.finish(span, opVerify, start, err)
	if err != nil {
		return nil, err
	}

	s.cacheSummary(ctx, verified.Summary())
	s.incVerifications()
	s.logInfo(ctx, "identity verified", "account_id", target.String(), "verifier_id", caller.String())
	return verified, nil
}

// PublicSummary returns the public view of target's record. Anyone may call it.
func (s *Service) PublicSummary(ctx context.Context, target id.AccountID) (*models.Summary, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanPublicSummary, tracer.String(tracer.AttrAccount, tracer.HashAccount(target.String())))
	start := time.Now()

	if cached, ok := s.cachedSummary(ctx, target); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
		s.finish(span, opPublicSummary, start, nil)
		return cached, nil
	}

	rec, err := s.store.FindRecord(ctx, target)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = errRecordNotFound()
		} else {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
		}
		s.finish(span, opPublicSummary, start, err)
		return nil, err
	}
	summary := rec.Summary()
	if summary.Verified {
		s.cacheSummary(ctx, summary)
	}
	s.finish(span, opPublicSummary, start, nil)
	return summary, nil
}

// OwnRecord returns the caller's full record. There is no way to read another
// account's full record.
func (s *Service) OwnRecord(ctx context.Context, caller id.AccountID) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanOwnRecord)
	start := time.Now()

	var rec *models.Record
	err := requireCaller(caller)
	if err == nil {
		rec, err = s.store.FindRecord(ctx, caller)
		if errors.Is(err, sentinel.ErrNotFound) {
			err = errRecordNotFound()
		} else if err != nil {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
		}
	}
	s.finish(span, opOwnRecord, start, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// IsVerified reports whether target has a verified record. A missing record
// is simply false; the error is reserved for storage failures.
func (s *Service) IsVerified(ctx context.Context, target id.AccountID) (bool, error) {
	if cached, ok := s.cachedSummary(ctx, target); ok {
		return cached.Verified, nil
	}
	rec, err := s.store.FindRecord(ctx, target)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
	}
	if rec.Verified {
		s.cacheSummary(ctx, rec.Summary())
	}
	return rec.Verified, nil
}

// HasRecord reports whether target has registered. The error is reserved for
// storage failures.
func (s *Service) HasRecord(ctx context.Context, target id.AccountID) (bool, error) {
	exists, err := s.store.RecordExists(ctx, target)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check identity record")
	}
	return exists, nil
}

// IsVerifier reports verifier-set membership. The owner is always a member.
func (s *Service) IsVerifier(ctx context.Context, account id.AccountID) (bool, error) {
	return s.isVerifier(ctx, s.store, account)
}

// AuthorizeVerifier adds candidate to the verifier set. Only the owner may call it.
func (s *Service) AuthorizeVerifier(ctx context.Context, caller, candidate id.AccountID) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuthorizeVerifier, tracer.String(tracer.AttrAccount, tracer.HashAccount(candidate.String())))
	start := time.Now()

	err := s.requireOwner(caller)
	switch {
	case err != nil:
	case candidate.IsNil():
		err = dErrors.Wrap(models.ErrNilAccount, dErrors.CodeInvalidInput, "verifier candidate must not be the null identifier")
	case candidate == s.owner:
		err = errAlreadyAuthorized()
	default:
		err = s.tx.RunInTx(ctx, func(ctx context.Context, st Store, events outbox.Appender) error {
			at := now(ctx)
			if err := st.AddVerifier(ctx, candidate, at); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return errAlreadyAuthorized()
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add verifier")
			}
			return s.appendEvent(ctx, span, events, candidate, identity.EventVerifierAuthorized, identity.VerifierAuthorized{
				Account: candidate.String(),
				Time:    at,
			})
		})
	}
	s.finish(span, opAuthorizeVerifier, start, err)
	if err != nil {
		return err
	}

	s.incVerifierChange("authorized")
	s.logInfo(ctx, "verifier authorized", "verifier_id", candidate.String())
	return nil
}

// RevokeVerifier removes candidate from the verifier set. Records it already
// verified stay verified.
func (s *Service) RevokeVerifier(ctx context.Context, caller, candidate id.AccountID) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevokeVerifier, tracer.String(tracer.AttrAccount, tracer.HashAccount(candidate.String())))
	start := time.Now()

	err := s.requireOwner(caller)
	switch {
	case err != nil:
	case candidate == s.owner:
		err = dErrors.New(dErrors.CodeCannotRevokeOwner, "the registry owner cannot be removed from the verifier set")
	default:
		err = s.tx.RunInTx(ctx, func(ctx context.Context, st Store, events outbox.Appender) error {
			if err := st.RemoveVerifier(ctx, candidate); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotAuthorized, "account is not an authorized verifier")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove verifier")
			}
			return s.appendEvent(ctx, span, events, candidate, identity.EventVerifierRevoked, identity.VerifierRevoked{
				Account: candidate.String(),
				Time:    now(ctx),
			})
		})
	}
	s.finish(span, opRevokeVerifier, start, err)
	if err != nil {
		return err
	}

	s.incVerifierChange("revoked")
	s.logInfo(ctx, "verifier revoked", "verifier_id", candidate.String())
	return nil
}

func (s *Service) isVerifier(ctx context.Context, st Store, account id.AccountID) (bool, error) {
	if account == s.owner {
		return true, nil
	}
	ok, err := st.IsVerifier(ctx, account)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier membership")
	}
	return ok, nil
}

func (s *Service) requireOwner(caller id.AccountID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if caller != s.owner {
		return dErrors.New(dErrors.CodeForbidden, "only the registry owner can manage verifiers")
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, span tracer.Span, events outbox.Appender, account id.AccountID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode notification")
	}
	entry := outbox.NewEntry(identity.AggregateType, account.String(), eventType, body, now(ctx))
	if err := events.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue notification")
	}
	span.AddEvent(tracer.EventNotificationQueued, tracer.String("event_type", eventType))
	return nil
}

func (s *Service) cachedSummary(ctx context.Context, target id.AccountID) (*models.Summary, bool) {
	if s.cache == nil {
		return nil, false
	}
	summary, err := s.cache.Get(ctx, target)
	switch {
	case err == nil:
		s.incCacheLookup("hit")
		return summary, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.incCacheLookup("miss")
	case errors.Is(err, sentinel.ErrUnavailable):
		s.incCacheLookup("bypass")
	default:
		s.incCacheLookup("error")
		s.logWarn(ctx, "summary cache read failed", "account_id", target.String(), "error", err)
	}
	return nil, false
}

func (s *Service) cacheSummary(ctx context.Context, summary *models.Summary) {
	if s.cache == nil || !summary.Verified {
		return
	}
	if err := s.cache.Set(ctx, summary); err != nil {
		s.logWarn(ctx, "summary cache write failed", "account_id", summary.AccountID.String(), "error", err)
	}
}

// finish ends the span and records latency and, on failure, the error code.
func (s *Service) finish(span tracer.Span, operation string, start time.Time, err error) {
	if err != nil {
		code := string(dErrors.CodeOf(err))
		span.SetAttributes(tracer.String(tracer.AttrErrorCode, code))
		if s.metrics != nil {
			s.metrics.IncOperationError(operation, code)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveOperationLatency(operation, time.Since(start).Seconds())
	}
	span.End(err)
}

func (s *Service) incRegistrations() {
	if s.metrics != nil {
		s.metrics.IncRegistrations()
	}
}

func (s *Service) incVerifications() {
	if s.metrics != nil {
		s.metrics.IncVerifications()
	}
}

func (s *Service) incVerifierChange(action string) {
	if s.metrics != nil {
		s.metrics.IncVerifierChange(action)
	}
}

func (s *Service) incCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.IncCacheLookup(result)
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, msg, append(args, "request_id", requestcontext.RequestID(ctx))...)
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, append(args, "request_id", requestcontext.RequestID(ctx))...)
}

func requireCaller(caller id.AccountID) error {
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	return nil
}

// now returns the request time at second precision, the resolution stored
// for registration and verification timestamps.
func now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC().Truncate(time.Second)
}

func errAlreadyRegistered() error {
	return dErrors.New(dErrors.CodeAlreadyRegistered, "identity already registered")
}

func errAlreadyAuthorized() error {
	return dErrors.New(dErrors.CodeAlreadyAuthorized, "account is already an authorized verifier")
}

func errRecordNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "identity record not found")
}
