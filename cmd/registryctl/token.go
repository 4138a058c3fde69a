package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	jwttoken "idregistry/internal/jwt_token"
	"idregistry/internal/platform/config"
	id "idregistry/pkg/domain"
)

type tokenOutput struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
	ExpiresIn string `json:"expires_in"`
	Issuer    string `json:"issuer"`
	Audience  string `json:"audience"`
}

type tokenOptions struct {
	accountID string
	ttl       time.Duration
	asJSON    bool
}

func newTokenCmd() *cobra.Command {
	var opts tokenOptions
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an account",
		Long: `Issue an HS256 bearer token signed with JWT_SIGNING_KEY.

When JWT_SIGNING_KEY is unset the development key is used, which a
production server rejects.

Example:
  registryctl token --account-id 550e8400-e29b-41d4-a716-446655440000
  registryctl token --ttl 1h --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.accountID, "account-id", "", "account ID (UUID); generated when empty")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "token lifetime; defaults to TOKEN_TTL")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of the bare token")
	return cmd
}

func runToken(cmd *cobra.Command, opts tokenOptions) error {
	authCfg, err := env.ParseAs[config.AuthConfig]()
	if err != nil {
		return fmt.Errorf("read auth config: %w", err)
	}
	if authCfg.JWTSigningKey == "" {
		authCfg.JWTSigningKey = config.DevJWTSigningKey
	}
	ttl := authCfg.TokenTTL
	if opts.ttl > 0 {
		ttl = opts.ttl
	}

	account := id.NewAccountID()
	if opts.accountID != "" {
		account, err = id.ParseAccountID(opts.accountID)
		if err != nil {
			return fmt.Errorf("invalid --account-id: %w", err)
		}
	}

	svc := jwttoken.NewJWTService(authCfg.JWTSigningKey, authCfg.Issuer, authCfg.Audience, ttl)
	token, err := svc.GenerateAccessToken(cmd.Context(), account)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	out := cmd.OutOrStdout()
	if !opts.asJSON {
		_, err = fmt.Fprintln(out, token)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenOutput{
		Token:     token,
		AccountID: account.String(),
		ExpiresIn: ttl.String(),
		Issuer:    authCfg.Issuer,
		Audience:  authCfg.Audience,
	})
}
