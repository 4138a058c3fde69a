package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idregistry/internal/identity/handler/mocks"
	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	dErrors "idregistry/pkg/domain-errors"
	"idregistry/pkg/requestcontext"
)

const testAccountHeader = "X-Test-Account"

// testAuth stands in for the JWT middleware: the principal comes from a
// header so tests can pick any caller.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := id.ParseAccountID(r.Header.Get(testAccountHeader))
		if err != nil || accountID.IsNil() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithAccountID(r.Context(), accountID)))
	})
}

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	caller  id.AccountID
	target  id.AccountID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.caller = id.NewAccountID()
	s.target = id.NewAccountID()

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router, testAuth)
}

func (s *HandlerSuite) do(method, path string, body any, caller id.AccountID) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if !caller.IsNil() {
		req.Header.Set(testAccountHeader, caller.String())
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) assertStatusAndError(w *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, w.Code, w.Body.String())
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(code, body["error"])
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) record(verified bool) *models.Record {
	rec, err := models.NewRecord(s.caller, models.Registration{
		Name: "Alice", Email: "a@x.com", DateOfBirth: 100, DocumentRef: "hash1",
	}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	if verified {
		s.Require().NoError(rec.Verify(s.target, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	}
	return rec
}

func (s *HandlerSuite) TestRegister() {
	s.Run("creates the caller's record", func() {
		s.service.EXPECT().Register(gomock.Any(), s.caller, models.Registration{
			Name: "Alice", Email: "a@x.com", DateOfBirth: 100, DocumentRef: "hash1",
		}).Return(s.record(false), nil)

		w := s.do(http.MethodPost, "/identities", RegisterRequest{
			Name: "Alice", Email: "a@x.com", DateOfBirth: 100, DocumentRef: "hash1",
		}, s.caller)

		s.Equal(http.StatusCreated, w.Code)
		body := s.decode(w)
		s.Equal(s.caller.String(), body["account_id"])
		s.Equal(false, body["verified"])
		s.Nil(body["verified_by"])
		s.Nil(body["verified_at"])
	})

	s.Run("empty fields reach the registry so duplicate registration wins", func() {
		s.service.EXPECT().Register(gomock.Any(), s.caller, models.Registration{}).
			Return(nil, dErrors.New(dErrors.CodeAlreadyRegistered, "identity already registered"))

		w := s.do(http.MethodPost, "/identities", `{}`, s.caller)
		s.assertStatusAndError(w, http.StatusConflict, "already_registered")
	})

	s.Run("field errors are invalid_input", func() {
		s.service.EXPECT().Register(gomock.Any(), s.caller, gomock.Any()).
			Return(nil, dErrors.Wrap(models.ErrEmptyName, dErrors.CodeInvalidInput, models.ErrEmptyName.Error()))

		w := s.do(http.MethodPost, "/identities", RegisterRequest{Email: "a@x.com", DateOfBirth: 1, DocumentRef: "d"}, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "invalid_input")
		s.Equal("name must not be empty", s.decode(w)["error_description"])
	})

	s.Run("malformed body", func() {
		w := s.do(http.MethodPost, "/identities", `{"name":`, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "bad_request")
	})

	s.Run("non-numeric date of birth", func() {
		w := s.do(http.MethodPost, "/identities", `{"name":"A","email":"e","date_of_birth":"1990-01-01","document_ref":"d"}`, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "bad_request")
	})

	s.Run("oversized name", func() {
		w := s.do(http.MethodPost, "/identities", RegisterRequest{Name: strings.Repeat("a", 257)}, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "validation_error")
	})

	s.Run("requires a principal", func() {
		w := s.do(http.MethodPost, "/identities", RegisterRequest{Name: "Alice"}, id.NilAccountID)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *HandlerSuite) TestOwnRecord() {
	s.Run("returns every field", func() {
		s.service.EXPECT().OwnRecord(gomock.Any(), s.caller).Return(s.record(true), nil)

		w := s.do(http.MethodGet, "/identities/me", nil, s.caller)

		s.Equal(http.StatusOK, w.Code)
		body := s.decode(w)
		s.Equal("a@x.com", body["email"])
		s.Equal(float64(100), body["date_of_birth"])
		s.Equal("hash1", body["document_ref"])
		s.Equal(s.target.String(), body["verified_by"])
		s.Equal("2026-01-02T00:00:00Z", body["verified_at"])
	})

	s.Run("not registered", func() {
		s.service.EXPECT().OwnRecord(gomock.Any(), s.caller).Return(nil, dErrors.New(dErrors.CodeNotFound, "identity record not found"))

		w := s.do(http.MethodGet, "/identities/me", nil, s.caller)
		s.assertStatusAndError(w, http.StatusNotFound, "not_found")
	})

	s.Run("requires a principal", func() {
		w := s.do(http.MethodGet, "/identities/me", nil, id.NilAccountID)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *HandlerSuite) TestVerify() {
	path := "/identities/" + s.target.String() + "/verify"

	s.Run("returns the verified summary", func() {
		rec := s.record(true)
		s.service.EXPECT().Verify(gomock.Any(), s.caller, s.target).Return(rec, nil)

		w := s.do(http.MethodPost, path, nil, s.caller)

		s.Equal(http.StatusOK, w.Code)
		body := s.decode(w)
		s.Equal(true, body["verified"])
		s.NotContains(body, "email")
		s.NotContains(body, "document_ref")
	})

	cases := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeForbidden, http.StatusForbidden},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeAlreadyVerified, http.StatusConflict},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s.Run(string(tc.code), func() {
			s.service.EXPECT().Verify(gomock.Any(), s.caller, s.target).Return(nil, dErrors.New(tc.code, "refused"))

			w := s.do(http.MethodPost, path, nil, s.caller)
			s.assertStatusAndError(w, tc.status, string(tc.code))
		})
	}

	s.Run("malformed target", func() {
		w := s.do(http.MethodPost, "/identities/not-a-uuid/verify", nil, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestPublicReads() {
	s.Run("summary of an unverified record has null verification fields", func() {
		s.service.EXPECT().PublicSummary(gomock.Any(), s.caller).Return(s.record(false).Summary(), nil)

		w := s.do(http.MethodGet, "/identities/"+s.caller.String(), nil, id.NilAccountID)

		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"account_id":"`+s.caller.String()+`","name":"Alice","verified":false,"verified_by":null,"verified_at":null}`, w.Body.String())
	})

	s.Run("summary of an unknown account", func() {
		s.service.EXPECT().PublicSummary(gomock.Any(), s.target).Return(nil, dErrors.New(dErrors.CodeNotFound, "identity record not found"))

		w := s.do(http.MethodGet, "/identities/"+s.target.String(), nil, id.NilAccountID)
		s.assertStatusAndError(w, http.StatusNotFound, "not_found")
	})

	s.Run("is verified", func() {
		s.service.EXPECT().IsVerified(gomock.Any(), s.target).Return(false, nil)

		w := s.do(http.MethodGet, "/identities/"+s.target.String()+"/verified", nil, id.NilAccountID)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(false, s.decode(w)["verified"])
	})

	s.Run("has record", func() {
		s.service.EXPECT().HasRecord(gomock.Any(), s.target).Return(true, nil)

		w := s.do(http.MethodGet, "/identities/"+s.target.String()+"/exists", nil, id.NilAccountID)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(true, s.decode(w)["exists"])
	})

	s.Run("is verifier", func() {
		s.service.EXPECT().IsVerifier(gomock.Any(), s.target).Return(true, nil)

		w := s.do(http.MethodGet, "/verifiers/"+s.target.String(), nil, id.NilAccountID)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(true, s.decode(w)["verifier"])
	})

	s.Run("storage failure hides details", func() {
		s.service.EXPECT().HasRecord(gomock.Any(), s.target).
			Return(false, dErrors.New(dErrors.CodeInternal, "failed to check identity record"))

		w := s.do(http.MethodGet, "/identities/"+s.target.String()+"/exists", nil, id.NilAccountID)
		s.assertStatusAndError(w, http.StatusInternalServerError, "internal_error")
		s.NotContains(s.decode(w), "error_description")
	})

	s.Run("owner", func() {
		s.service.EXPECT().Owner().Return(s.target)

		w := s.do(http.MethodGet, "/registry/owner", nil, id.NilAccountID)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(s.target.String(), s.decode(w)["owner"])
	})
}

func (s *HandlerSuite) TestAuthorizeVerifier() {
	s.Run("adds the candidate", func() {
		s.service.EXPECT().AuthorizeVerifier(gomock.Any(), s.caller, s.target).Return(nil)

		w := s.do(http.MethodPost, "/verifiers", AuthorizeVerifierRequest{AccountID: s.target.String()}, s.caller)
		s.Equal(http.StatusCreated, w.Code)
		s.Equal(true, s.decode(w)["verifier"])
	})

	s.Run("null candidate reaches the registry", func() {
		s.service.EXPECT().AuthorizeVerifier(gomock.Any(), s.caller, id.NilAccountID).
			Return(dErrors.Wrap(models.ErrNilAccount, dErrors.CodeInvalidInput, "verifier candidate must not be the null identifier"))

		w := s.do(http.MethodPost, "/verifiers", AuthorizeVerifierRequest{AccountID: id.NilAccountID.String()}, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "invalid_input")
	})

	s.Run("missing account_id", func() {
		w := s.do(http.MethodPost, "/verifiers", `{}`, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "validation_error")
	})

	s.Run("upper-case account_id parses like a path parameter", func() {
		s.service.EXPECT().AuthorizeVerifier(gomock.Any(), s.caller, s.target).Return(nil)

		w := s.do(http.MethodPost, "/verifiers", AuthorizeVerifierRequest{AccountID: strings.ToUpper(s.target.String())}, s.caller)
		s.Equal(http.StatusCreated, w.Code)
		s.Equal(s.target.String(), s.decode(w)["account_id"])
	})

	s.Run("malformed account_id", func() {
		w := s.do(http.MethodPost, "/verifiers", AuthorizeVerifierRequest{AccountID: "not-a-uuid"}, s.caller)
		s.assertStatusAndError(w, http.StatusBadRequest, "bad_request")
	})

	for code, status := range map[dErrors.Code]int{
		dErrors.CodeForbidden:         http.StatusForbidden,
		dErrors.CodeAlreadyAuthorized: http.StatusConflict,
	} {
		s.Run(string(code), func() {
			s.service.EXPECT().AuthorizeVerifier(gomock.Any(), s.caller, s.target).Return(dErrors.New(code, "refused"))

			w := s.do(http.MethodPost, "/verifiers", AuthorizeVerifierRequest{AccountID: s.target.String()}, s.caller)
			s.assertStatusAndError(w, status, string(code))
		})
	}
}

func (s *HandlerSuite) TestRevokeVerifier() {
	path := "/verifiers/" + s.target.String()

	s.Run("removes the verifier", func() {
		s.service.EXPECT().RevokeVerifier(gomock.Any(), s.caller, s.target).Return(nil)

		w := s.do(http.MethodDelete, path, nil, s.caller)
		s.Equal(http.StatusNoContent, w.Code)
	})

	for code, status := range map[dErrors.Code]int{
		dErrors.CodeForbidden:         http.StatusForbidden,
		dErrors.CodeCannotRevokeOwner: http.StatusForbidden,
		dErrors.CodeNotAuthorized:     http.StatusConflict,
	} {
		s.Run(string(code), func() {
			s.service.EXPECT().RevokeVerifier(gomock.Any(), s.caller, s.target).Return(dErrors.New(code, "refused"))

			w := s.do(http.MethodDelete, path, nil, s.caller)
			s.assertStatusAndError(w, status, string(code))
		})
	}

	s.Run("requires a principal", func() {
		w := s.do(http.MethodDelete, path, nil, id.NilAccountID)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}
