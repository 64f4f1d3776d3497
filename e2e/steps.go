package e2e

import (
	"github.com/cucumber/godog"

	"artemiz/e2e/steps/common"
	"artemiz/e2e/steps/ratelimit"
	"artemiz/e2e/steps/registration"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register registration wizard steps
	registration.RegisterSteps(ctx, tc)

	// Register submit rate limiting steps
	ratelimit.RegisterSteps(ctx, tc)
}
