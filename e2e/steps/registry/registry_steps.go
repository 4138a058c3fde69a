package registry

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	id "idregistry/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	Account(name string) id.AccountID
	BearerFor(name string) (map[string]string, error)
}

// RegisterSteps registers identity registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	// Registration
	ctx.Step(`^"([^"]*)" registers with name "([^"]*)"$`, steps.registerWithName)
	ctx.Step(`^"([^"]*)" registers with an empty name$`, steps.registerWithEmptyName)
	ctx.Step(`^"([^"]*)" registers without authentication$`, steps.registerWithoutAuth)
	ctx.Step(`^"([^"]*)" fetches their own record$`, steps.fetchOwnRecord)

	// Verifier administration
	ctx.Step(`^"([^"]*)" authorizes "([^"]*)" as a verifier$`, steps.authorizeVerifier)
	ctx.Step(`^"([^"]*)" revokes "([^"]*)" as a verifier$`, steps.revokeVerifier)

	// Verification
	ctx.Step(`^"([^"]*)" verifies "([^"]*)"$`, steps.verify)

	// Public reads
	ctx.Step(`^anyone looks up "([^"]*)"$`, steps.lookUp)
	ctx.Step(`^anyone asks whether "([^"]*)" is verified$`, steps.askVerified)
	ctx.Step(`^anyone asks whether "([^"]*)" has a record$`, steps.askExists)
	ctx.Step(`^anyone asks whether "([^"]*)" is a verifier$`, steps.askVerifier)
	ctx.Step(`^anyone asks who owns the registry$`, steps.askOwner)

	// Assertions on actors
	ctx.Step(`^the response field "([^"]*)" should be the account of "([^"]*)"$`, steps.fieldIsAccountOf)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) register(actor string, name string) error {
	headers, err := s.tc.BearerFor(actor)
	if err != nil {
		return err
	}
	return s.tc.POST("/identities", map[string]any{
		"name":          name,
		"email":         actor + "@example.com",
		"date_of_birth": 631152000,
		"document_ref":  "sha256:" + actor,
	}, headers)
}

func (s *registrySteps) registerWithName(ctx context.Context, actor, name string) error {
	return s.register(actor, name)
}

func (s *registrySteps) registerWithEmptyName(ctx context.Context, actor string) error {
	return s.register(actor, "")
}

func (s *registrySteps) registerWithoutAuth(ctx context.Context, actor string) error {
	return s.tc.POST("/identities", map[string]any{
		"name":          actor,
		"email":         actor + "@example.com",
		"date_of_birth": 631152000,
		"document_ref":  "sha256:" + actor,
	}, nil)
}

func (s *registrySteps) fetchOwnRecord(ctx context.Context, actor string) error {
	headers, err := s.tc.BearerFor(actor)
	if err != nil {
		return err
	}
	return s.tc.GET("/identities/me", headers)
}

func (s *registrySteps) authorizeVerifier(ctx context.Context, caller, candidate string) error {
	headers, err := s.tc.BearerFor(caller)
	if err != nil {
		return err
	}
	return s.tc.POST("/verifiers", map[string]any{
		"account_id": s.tc.Account(candidate).String(),
	}, headers)
}

func (s *registrySteps) revokeVerifier(ctx context.Context, caller, candidate string) error {
	headers, err := s.tc.BearerFor(caller)
	if err != nil {
		return err
	}
	return s.tc.DELETE("/verifiers/"+s.tc.Account(candidate).String(), headers)
}

func (s *registrySteps) verify(ctx context.Context, caller, target string) error {
	headers, err := s.tc.BearerFor(caller)
	if err != nil {
		return err
	}
	return s.tc.POST("/identities/"+s.tc.Account(target).String()+"/verify", map[string]any{}, headers)
}

func (s *registrySteps) lookUp(ctx context.Context, target string) error {
	return s.tc.GET("/identities/"+s.tc.Account(target).String(), nil)
}

func (s *registrySteps) askVerified(ctx context.Context, target string) error {
	return s.tc.GET("/identities/"+s.tc.Account(target).String()+"/verified", nil)
}

func (s *registrySteps) askExists(ctx context.Context, target string) error {
	return s.tc.GET("/identities/"+s.tc.Account(target).String()+"/exists", nil)
}

func (s *registrySteps) askVerifier(ctx context.Context, target string) error {
	return s.tc.GET("/verifiers/"+s.tc.Account(target).String(), nil)
}

func (s *registrySteps) askOwner(ctx context.Context) error {
	return s.tc.GET("/registry/owner", nil)
}

func (s *registrySteps) fieldIsAccountOf(ctx context.Context, field, actor string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	want := s.tc.Account(actor).String()
	if fmt.Sprint(value) != want {
		return fmt.Errorf("field %s: expected account of %s (%s) but got %v", field, actor, want, value)
	}
	return nil
}
