package e2e

import (
	"github.com/cucumber/godog"

	"nyaya/e2e/steps/common"
	"nyaya/e2e/steps/efir"
	"nyaya/e2e/steps/evidence"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (officer identity, raw requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register e-FIR lifecycle steps
	efir.RegisterSteps(ctx, tc)

	// Register evidence integrity steps
	evidence.RegisterSteps(ctx, tc)
}
