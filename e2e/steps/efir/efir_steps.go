package efir

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	Save(key, value string)
	Saved(key string) (string, error)
}

const firKey = "efir_id"

// RegisterSteps registers e-FIR lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &efirSteps{tc: tc}

	ctx.Step(`^I submit an e-FIR for "([^"]*)" at station "([^"]*)" describing "([^"]*)"$`, steps.submit)
	ctx.Step(`^I submit an e-FIR for vulnerable "([^"]*)" at station "([^"]*)" describing "([^"]*)"$`, steps.submitVulnerable)
	ctx.Step(`^I submit an e-FIR with unverified contact$`, steps.submitUnverified)
	ctx.Step(`^I save the e-FIR id$`, steps.saveID)
	ctx.Step(`^I fetch the e-FIR status$`, steps.fetchStatus)
	ctx.Step(`^I fetch the registration$`, steps.fetchRegistration)
	ctx.Step(`^I sign the e-FIR with method "([^"]*)" and reference "([^"]*)"$`, steps.sign)
	ctx.Step(`^I quash the e-FIR because "([^"]*)"$`, steps.quash)
}

type efirSteps struct {
	tc TestContext
}

func submitBody(name, station, description string, vulnerable, verified bool) map[string]any {
	informant := map[string]any{
		"name":             name,
		"mobile":           "+919800000001",
		"contact_verified": verified,
	}
	if vulnerable {
		informant["is_vulnerable"] = true
		informant["vulnerable_category"] = "WOMAN"
	}
	return map[string]any{
		"informant": informant,
		"incident": map[string]any{
			"location":     "MG Road",
			"description":  description,
			"station_code": station,
		},
	}
}

func (s *efirSteps) submit(ctx context.Context, name, station, description string) error {
	return s.tc.POST("/v1/firs", submitBody(name, station, description, false, true))
}

func (s *efirSteps) submitVulnerable(ctx context.Context, name, station, description string) error {
	return s.tc.POST("/v1/firs", submitBody(name, station, description, true, true))
}

func (s *efirSteps) submitUnverified(ctx context.Context) error {
	return s.tc.POST("/v1/firs", submitBody("Ravi", "KA-BLR-042", "bicycle theft", false, false))
}

func (s *efirSteps) saveID(ctx context.Context) error {
	id, err := s.tc.GetResponseField("temp_id")
	if err != nil {
		return err
	}
	s.tc.Save(firKey, fmt.Sprint(id))
	return nil
}

func (s *efirSteps) path(suffix string) (string, error) {
	id, err := s.tc.Saved(firKey)
	if err != nil {
		return "", err
	}
	return "/v1/firs/" + id + suffix, nil
}

func (s *efirSteps) fetchStatus(ctx context.Context) error {
	p, err := s.path("")
	if err != nil {
		return err
	}
	return s.tc.GET(p, nil)
}

func (s *efirSteps) fetchRegistration(ctx context.Context) error {
	p, err := s.path("/registration")
	if err != nil {
		return err
	}
	return s.tc.GET(p, nil)
}

func (s *efirSteps) sign(ctx context.Context, method, reference string) error {
	p, err := s.path("/sign")
	if err != nil {
		return err
	}
	return s.tc.POST(p, map[string]string{"method": method, "reference": reference})
}

func (s *efirSteps) quash(ctx context.Context, reason string) error {
	p, err := s.path("/quash")
	if err != nil {
		return err
	}
	return s.tc.POST(p, map[string]string{"reason": reason})
}
