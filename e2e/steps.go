package e2e

import (
	"github.com/cucumber/godog"

	"idregistry/e2e/steps/common"
	"idregistry/e2e/steps/registry"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *contextHolder) {
	common.RegisterSteps(ctx, tc)
	registry.RegisterSteps(ctx, tc)
}
