package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	identityhandler "idregistry/internal/identity/handler"
	identityservice "idregistry/internal/identity/service"
	identitystore "idregistry/internal/identity/store"
	jwttoken "idregistry/internal/jwt_token"
	"idregistry/internal/platform/config"
	"idregistry/internal/platform/health"
	httptransport "idregistry/internal/transport/http"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/middleware/request"
	outboxmemory "idregistry/pkg/platform/outbox/store/memory"
)

// TestContext holds state between test steps. Without BASE_URL every
// scenario gets a fresh in-process registry.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	Owner            id.AccountID

	tokens   *jwttoken.JWTService
	accounts map[string]id.AccountID
	server   *httptest.Server
}

// NewTestContext creates a new test context
func NewTestContext() (*TestContext, error) {
	tc := &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		accounts:   make(map[string]id.AccountID),
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = config.DevJWTSigningKey
	}
	tc.tokens = jwttoken.NewJWTService(signingKey, "idregistry", "idregistry-api", time.Hour)

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		owner, err := id.ParseAccountID(os.Getenv("IDREG_OWNER_ACCOUNT_ID"))
		if err != nil {
			return nil, fmt.Errorf("BASE_URL requires IDREG_OWNER_ACCOUNT_ID: %w", err)
		}
		tc.BaseURL = baseURL
		tc.Owner = owner
		return tc, nil
	}

	tc.Owner = id.NewAccountID()
	if err := tc.startInProcess(); err != nil {
		return nil, err
	}
	return tc, nil
}

func (tc *TestContext) startInProcess() error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	records := identitystore.NewInMemory()
	svc, err := identityservice.New(tc.Owner, records, identityservice.NewInMemoryTx(records, outboxmemory.New()),
		identityservice.WithLogger(logger),
		identityservice.WithSummaryCache(identitystore.NewLocalSummaryCache(time.Minute)),
	)
	if err != nil {
		return err
	}
	if err := svc.Bootstrap(context.Background()); err != nil {
		return err
	}

	tc.server = httptest.NewServer(httptransport.NewRouter(httptransport.Deps{
		Logger:    logger,
		Identity:  identityhandler.New(svc, logger),
		Health:    health.New("e2e"),
		Validator: jwttoken.NewJWTServiceAdapter(tc.tokens),
		Metrics:   request.NewMetrics(reg),
		Gatherer:  reg,
	}))
	tc.BaseURL = tc.server.URL
	return nil
}

// Close stops the in-process server, if any.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

// Account returns the identifier for a named actor, minting one on first use.
// "the owner" always resolves to the registry owner.
func (tc *TestContext) Account(name string) id.AccountID {
	if name == "the owner" || name == "owner" {
		return tc.Owner
	}
	acct, ok := tc.accounts[name]
	if !ok {
		acct = id.NewAccountID()
		tc.accounts[name] = acct
	}
	return acct
}

// BearerFor returns an Authorization header for the named actor.
func (tc *TestContext) BearerFor(name string) (map[string]string, error) {
	token, err := tc.tokens.GenerateAccessToken(context.Background(), tc.Account(name))
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(data), headers)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// DELETE makes a DELETE request and stores the response
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.do(http.MethodDelete, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
