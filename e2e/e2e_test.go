//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestFeatures runs the Gherkin features against a running server, by default
// http://localhost:8080. The server and the suite must share
// ARTEMIZ_ADMIN_TOKEN for the admin scenarios, and the rate limit scenarios
// pick their client address through X-Forwarded-For, so the server needs
// ARTEMIZ_TRUSTED_PROXIES=127.0.0.1,::1.
func TestFeatures(t *testing.T) {
	tc := NewTestContext(envOr("ARTEMIZ_E2E_BASE_URL", "http://localhost:8080"), os.Getenv("ARTEMIZ_ADMIN_TOKEN"))

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
