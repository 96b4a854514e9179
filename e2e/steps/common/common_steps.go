package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, contentType string, body []byte, headers map[string]string) error
	SetOfficer(id string)
	StatusCode() int
	Body() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers steps shared by every feature
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I act as officer "([^"]*)"$`, steps.actAsOfficer)
	ctx.Step(`^I POST raw JSON "((?:[^"\\]|\\.)*)" to "([^"]*)"$`, steps.postRawJSON)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be present$`, steps.fieldShouldBePresent)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) actAsOfficer(ctx context.Context, id string) error {
	s.tc.SetOfficer(id)
	return nil
}

func (s *commonSteps) postRawJSON(ctx context.Context, body, path string) error {
	unquoted, err := strconv.Unquote(`"` + body + `"`)
	if err != nil {
		return fmt.Errorf("unquote body: %w", err)
	}
	return s.tc.Do("POST", path, "application/json", []byte(unquoted), nil)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBePresent(ctx context.Context, field string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if v == nil || v == "" {
		return fmt.Errorf("expected %s to be present", field)
	}
	return nil
}
