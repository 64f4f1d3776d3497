package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
	GetSessionID() string
	SetClientIP(ip string)
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I am connecting from IP "([^"]*)"$`, steps.connectingFromIP)
	ctx.Step(`^I submit the registration (\d+) times$`, steps.submitNTimes)
	ctx.Step(`^every submission should have returned a status other than 429$`, steps.noneRateLimited)
	ctx.Step(`^the response should be rate limited$`, steps.responseRateLimited)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) connectingFromIP(ctx context.Context, ip string) error {
	s.tc.SetClientIP(ip)
	return nil
}

func (s *ratelimitSteps) submitNTimes(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	path := "/api/registrations/" + s.tc.GetSessionID() + "/submit"
	for range n {
		if err := s.tc.POST(path, nil); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) noneRateLimited(ctx context.Context) error {
	for i, status := range s.statuses {
		if status == 429 {
			return fmt.Errorf("submission %d was rate limited", i+1)
		}
	}
	return nil
}

func (s *ratelimitSteps) responseRateLimited(ctx context.Context) error {
	if status := s.tc.GetLastResponseStatus(); status != 429 {
		return fmt.Errorf("expected status 429, got %d", status)
	}
	if s.tc.GetLastResponseHeader("Retry-After") == "" {
		return fmt.Errorf("expected a Retry-After header")
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("decode rate limit body: %w", err)
	}
	if body.Error != "rate_limited" {
		return fmt.Errorf("expected error rate_limited, got %q", body.Error)
	}
	return nil
}
