package e2e

import (
	"github.com/cucumber/godog"

	"onboard/e2e/steps/claims"
	"onboard/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// Claim submission and adjudication
	claims.RegisterSteps(ctx, tc)
}
