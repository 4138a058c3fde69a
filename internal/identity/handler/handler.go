package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	dErrors "idregistry/pkg/domain-errors"
	"idregistry/pkg/platform/httputil"
	"idregistry/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, caller id.AccountID, reg models.Registration) (*models.Record, error)
	Verify(ctx context.Context, caller, target id.AccountID) (*models.Record, error)
	PublicSummary(ctx context.Context, target id.AccountID) (*models.Summary, error)
	OwnRecord(ctx context.Context, caller id.AccountID) (*models.Record, error)
	IsVerified(ctx context.Context, target id.AccountID) (bool, error)
	HasRecord(ctx context.Context, target id.AccountID) (bool, error)
	IsVerifier(ctx context.Context, account id.AccountID) (bool, error)
	AuthorizeVerifier(ctx context.Context, caller, candidate id.AccountID) error
	RevokeVerifier(ctx context.Context, caller, candidate id.AccountID) error
	Owner() id.AccountID
}

// Handler handles identity registry endpoints.
type Handler struct {
	logger   *slog.Logger
	registry Service
}

// New creates a new identity Handler.
func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
	}
}

// Register mounts the registry routes. Mutations and the own-record read sit
// behind requireAuth; everything else is public.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/identities/{accountID}", h.HandlePublicSummary)
	r.Get("/identities/{accountID}/verified", h.HandleIsVerified)
	r.Get("/identities/{accountID}/exists", h.HandleHasRecord)
	r.Get("/verifiers/{accountID}", h.HandleIsVerifier)
	r.Get("/registry/owner", h.HandleOwner)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/identities", h.HandleRegister)
		r.Get("/identities/me", h.HandleOwnRecord)
		r.Post("/identities/{accountID}/verify", h.HandleVerify)
		r.Post("/verifiers", h.HandleAuthorizeVerifier)
		r.Delete("/verifiers/{accountID}", h.HandleRevokeVerifier)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	rec, err := h.registry.Register(ctx, caller, req.toRegistration())
	if err != nil {
		h.writeServiceError(ctx, w, "register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h *Handler) HandleOwnRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.registry.OwnRecord(ctx, caller)
	if err != nil {
		h.writeServiceError(ctx, w, "own record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	target, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	rec, err := h.registry.Verify(ctx, caller, target)
	if err != nil {
		h.writeServiceError(ctx, w, "verify", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(rec.Summary()))
}

func (h *Handler) HandlePublicSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	summary, err := h.registry.PublicSummary(ctx, target)
	if err != nil {
		h.writeServiceError(ctx, w, "public summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) HandleIsVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	verified, err := h.registry.IsVerified(ctx, target)
	if err != nil {
		h.writeServiceError(ctx, w, "is verified", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifiedResponse{AccountID: target.String(), Verified: verified})
}

func (h *Handler) HandleHasRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	exists, err := h.registry.HasRecord(ctx, target)
	if err != nil {
		h.writeServiceError(ctx, w, "has record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ExistsResponse{AccountID: target.String(), Exists: exists})
}

func (h *Handler) HandleIsVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	member, err := h.registry.IsVerifier(ctx, account)
	if err != nil {
		h.writeServiceError(ctx, w, "is verifier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifierResponse{AccountID: account.String(), Verifier: member})
}

func (h *Handler) HandleOwner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, OwnerResponse{Owner: h.registry.Owner().String()})
}

func (h *Handler) HandleAuthorizeVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AuthorizeVerifierRequest](w, r, h.logger)
	if !ok {
		return
	}
	candidate, err := id.ParseAccountID(req.AccountID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account_id"))
		return
	}

	if err := h.registry.AuthorizeVerifier(ctx, caller, candidate); err != nil {
		h.writeServiceError(ctx, w, "authorize verifier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, VerifierResponse{AccountID: candidate.String(), Verifier: true})
}

func (h *Handler) HandleRevokeVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	candidate, ok := h.pathAccount(w, r)
	if !ok {
		return
	}

	if err := h.registry.RevokeVerifier(ctx, caller, candidate); err != nil {
		h.writeServiceError(ctx, w, "revoke verifier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathAccount(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account ID in path"))
		return id.NilAccountID, false
	}
	return accountID, true
}

// writeServiceError logs at error level only for failures the client did not
// cause.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	args := []any{
		"operation", operation,
		"error_code", string(dErrors.CodeOf(err)),
		"request_id", requestcontext.RequestID(ctx),
	}
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "registry operation failed", append(args, "error", err)...)
	} else {
		h.logger.InfoContext(ctx, "registry operation refused", args...)
	}
	httputil.WriteError(w, err)
}
