package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PATCH(path string, body any) error
	DELETE(path string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetSessionID() string
	SetSessionID(sessionID string)
}

// RegisterSteps registers registration wizard step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^I start a registration$`, steps.startRegistration)
	ctx.Step(`^I answer "([^"]*)" with "([^"]*)"$`, steps.answer)
	ctx.Step(`^I fill in every answer correctly$`, steps.fillInEverything)
	ctx.Step(`^I toggle "([^"]*)" in "([^"]*)"$`, steps.toggle)
	ctx.Step(`^I go to the next step$`, steps.next)
	ctx.Step(`^I go to the previous step$`, steps.previous)
	ctx.Step(`^I walk to the last step$`, steps.walkToLastStep)
	ctx.Step(`^I submit the registration$`, steps.submit)
	ctx.Step(`^I abandon the registration$`, steps.abandon)
	ctx.Step(`^I reload the registration$`, steps.reload)
	ctx.Step(`^the wizard should be on step (\d+)$`, steps.wizardOnStep)
	ctx.Step(`^the field "([^"]*)" should have the error "([^"]*)"$`, steps.fieldShouldHaveError)
	ctx.Step(`^the field "([^"]*)" should have no error$`, steps.fieldShouldHaveNoError)
	ctx.Step(`^"([^"]*)" should contain "([^"]*)"$`, steps.answerShouldContain)
	ctx.Step(`^"([^"]*)" should not contain "([^"]*)"$`, steps.answerShouldNotContain)
	ctx.Step(`^the notice should be "([^"]*)"$`, steps.noticeShouldBe)
	ctx.Step(`^the browser should be sent home after (\d+) seconds$`, steps.redirectAfter)
}

type registrationSteps struct {
	tc TestContext
}

type view struct {
	Step     int               `json:"step"`
	Phase    string            `json:"phase"`
	Answers  map[string]any    `json:"answers"`
	Errors   map[string]string `json:"errors"`
	Notice   *notice           `json:"notice"`
	Redirect *redirect         `json:"redirect"`
}

type notice struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

type redirect struct {
	Location     string `json:"location"`
	AfterSeconds int    `json:"afterSeconds"`
}

func (s *registrationSteps) path(suffix string) string {
	return "/api/registrations/" + s.tc.GetSessionID() + suffix
}

func (s *registrationSteps) view() (*view, error) {
	var v view
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &v); err != nil {
		return nil, fmt.Errorf("decode wizard view: %w", err)
	}
	return &v, nil
}

func (s *registrationSteps) startRegistration(ctx context.Context) error {
	if err := s.tc.POST("/api/registrations", nil); err != nil {
		return err
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetSessionID(id.(string))
	return nil
}

func (s *registrationSteps) answer(ctx context.Context, field, value string) error {
	return s.tc.PATCH(s.path("/answers"), map[string]any{field: value})
}

func (s *registrationSteps) fillInEverything(ctx context.Context) error {
	return s.tc.PATCH(s.path("/answers"), map[string]any{
		"name":                 "Ada Lovelace",
		"email":                "ada@example.com",
		"phone":                "9876543210",
		"studentId":            "CS-2024-001",
		"course":               "bca",
		"year":                 "2",
		"experienceLevel":      "intermediate",
		"programmingLanguages": []string{"Go"},
		"areasOfInterest":      []string{"DevOps"},
		"motivation":           "Build things with other people",
		"timeCommitment":       "4-8 hours",
		"hasLaptop":            true,
		"referralSource":       "friends",
	})
}

func (s *registrationSteps) toggle(ctx context.Context, option, field string) error {
	return s.tc.POST(s.path("/toggle"), map[string]string{"field": field, "option": option})
}

func (s *registrationSteps) next(ctx context.Context) error {
	return s.tc.POST(s.path("/next"), nil)
}

func (s *registrationSteps) previous(ctx context.Context) error {
	return s.tc.POST(s.path("/previous"), nil)
}

func (s *registrationSteps) walkToLastStep(ctx context.Context) error {
	for range 4 {
		if err := s.next(ctx); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status != 200 {
			return fmt.Errorf("next returned %d: %s", status, s.tc.GetLastResponseBody())
		}
	}
	return nil
}

func (s *registrationSteps) submit(ctx context.Context) error {
	return s.tc.POST(s.path("/submit"), nil)
}

func (s *registrationSteps) abandon(ctx context.Context) error {
	return s.tc.DELETE(s.path(""))
}

func (s *registrationSteps) reload(ctx context.Context) error {
	return s.tc.GET(s.path(""), nil)
}

func (s *registrationSteps) wizardOnStep(ctx context.Context, step int) error {
	v, err := s.view()
	if err != nil {
		return err
	}
	if v.Step != step {
		return fmt.Errorf("expected step %d, got %d", step, v.Step)
	}
	return nil
}

func (s *registrationSteps) fieldShouldHaveError(ctx context.Context, field, message string) error {
	v, err := s.view()
	if err != nil {
		return err
	}
	if got := v.Errors[field]; got != message {
		return fmt.Errorf("expected error %q on %s, got %q", message, field, got)
	}
	return nil
}

func (s *registrationSteps) fieldShouldHaveNoError(ctx context.Context, field string) error {
	v, err := s.view()
	if err != nil {
		return err
	}
	if got, ok := v.Errors[field]; ok {
		return fmt.Errorf("expected no error on %s, got %q", field, got)
	}
	return nil
}

func (s *registrationSteps) selected(field string) ([]string, error) {
	v, err := s.view()
	if err != nil {
		return nil, err
	}
	raw, _ := v.Answers[field].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprint(item))
	}
	return out, nil
}

func (s *registrationSteps) answerShouldContain(ctx context.Context, field, option string) error {
	got, err := s.selected(field)
	if err != nil {
		return err
	}
	if !slices.Contains(got, option) {
		return fmt.Errorf("expected %s to contain %q, got %v", field, option, got)
	}
	return nil
}

func (s *registrationSteps) answerShouldNotContain(ctx context.Context, field, option string) error {
	got, err := s.selected(field)
	if err != nil {
		return err
	}
	if slices.Contains(got, option) {
		return fmt.Errorf("expected %s not to contain %q, got %v", field, option, got)
	}
	return nil
}

func (s *registrationSteps) noticeShouldBe(ctx context.Context, title string) error {
	v, err := s.view()
	if err != nil {
		return err
	}
	if v.Notice == nil || v.Notice.Title != title {
		return fmt.Errorf("expected notice %q, got %+v", title, v.Notice)
	}
	return nil
}

func (s *registrationSteps) redirectAfter(ctx context.Context, seconds int) error {
	v, err := s.view()
	if err != nil {
		return err
	}
	if v.Redirect == nil || v.Redirect.Location != "/" || v.Redirect.AfterSeconds != seconds {
		return fmt.Errorf("expected redirect home after %ds, got %+v", seconds, v.Redirect)
	}
	return nil
}
