package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "idregistry/internal/jwt_token"
	"idregistry/internal/platform/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToken_SignsWithDevKeyByDefault(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	account := "550e8400-e29b-41d4-a716-446655440000"

	out, err := execute(t, "token", "--account-id", account)
	require.NoError(t, err)

	svc := jwttoken.NewJWTService(config.DevJWTSigningKey, "idregistry", "idregistry-api", time.Minute)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, account, claims.AccountID)
}

func TestToken_JSONOutput(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")
	t.Setenv("JWT_ISSUER", "issuer-x")

	out, err := execute(t, "token", "--ttl", "1h", "--json")
	require.NoError(t, err)

	var got tokenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1h0m0s", got.ExpiresIn)
	assert.Equal(t, "issuer-x", got.Issuer)
	assert.NotEmpty(t, got.AccountID)

	svc := jwttoken.NewJWTService("cli-test-key", "issuer-x", got.Audience, time.Hour)
	claims, err := svc.ValidateToken(got.Token)
	require.NoError(t, err)
	assert.Equal(t, got.AccountID, claims.AccountID)
}

func TestToken_RejectsBadAccountID(t *testing.T) {
	_, err := execute(t, "token", "--account-id", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account-id")
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	for _, bad := range []string{"0", "-2", "x"} {
		_, err := parseSteps([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
