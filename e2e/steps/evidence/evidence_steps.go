package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, contentType string, body []byte, headers map[string]string) error
	GET(path string, headers map[string]string) error
	Body() []byte
	AdminToken() string
	Save(key, value string)
	Saved(key string) (string, error)
}

const caseKey = "case_id"

// RegisterSteps registers evidence integrity step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &evidenceSteps{tc: tc}

	ctx.Step(`^a fresh case id$`, steps.freshCase)
	ctx.Step(`^I seal "([^"]*)" with content "([^"]*)"$`, steps.seal)
	ctx.Step(`^I verify "([^"]*)" with content "([^"]*)"$`, steps.verify)
	ctx.Step(`^I fetch the case ledger$`, steps.fetchLedger)
	ctx.Step(`^I resume sealing because "([^"]*)"$`, steps.resume)
	ctx.Step(`^the ledger should have (\d+) anchors chained in order$`, steps.ledgerChained)
}

type evidenceSteps struct {
	tc TestContext
}

func (s *evidenceSteps) freshCase(ctx context.Context) error {
	s.tc.Save(caseKey, fmt.Sprintf("CASE-%d", time.Now().UnixNano()))
	return nil
}

func (s *evidenceSteps) casePath(suffix string) (string, error) {
	id, err := s.tc.Saved(caseKey)
	if err != nil {
		return "", err
	}
	return "/v1/cases/" + url.PathEscape(id) + suffix, nil
}

func (s *evidenceSteps) seal(ctx context.Context, fileName, content string) error {
	p, err := s.casePath("/evidence?file_name=" + url.QueryEscape(fileName))
	if err != nil {
		return err
	}
	return s.tc.Do("POST", p, "application/octet-stream", []byte(content), nil)
}

func (s *evidenceSteps) verify(ctx context.Context, fileName, content string) error {
	p, err := s.casePath("/evidence/verify?file_name=" + url.QueryEscape(fileName))
	if err != nil {
		return err
	}
	return s.tc.Do("POST", p, "application/octet-stream", []byte(content), nil)
}

func (s *evidenceSteps) fetchLedger(ctx context.Context) error {
	p, err := s.casePath("/ledger")
	if err != nil {
		return err
	}
	return s.tc.GET(p, nil)
}

func (s *evidenceSteps) resume(ctx context.Context, reason string) error {
	p, err := s.casePath("/resume-sealing")
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	return s.tc.Do("POST", p, "application/json", body, map[string]string{"X-Admin-Token": s.tc.AdminToken()})
}

func (s *evidenceSteps) ledgerChained(ctx context.Context, want int) error {
	var ledger struct {
		Anchors []struct {
			Sequence             int64  `json:"sequence"`
			PreviousAnchorDigest string `json:"previous_anchor_digest"`
			AnchorDigest         string `json:"anchor_digest"`
		} `json:"anchors"`
	}
	if err := json.Unmarshal(s.tc.Body(), &ledger); err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}
	if len(ledger.Anchors) != want {
		return fmt.Errorf("expected %d anchors, got %d", want, len(ledger.Anchors))
	}
	for i, a := range ledger.Anchors {
		if a.Sequence != int64(i+1) {
			return fmt.Errorf("anchor %d has sequence %d", i, a.Sequence)
		}
		if i > 0 && a.PreviousAnchorDigest != ledger.Anchors[i-1].AnchorDigest {
			return fmt.Errorf("anchor %d does not link to its predecessor", a.Sequence)
		}
	}
	return nil
}
