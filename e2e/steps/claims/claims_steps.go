package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	AdminGET(path string) error
	LastBody() []byte
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) string
}

// RegisterSteps registers claim onboarding step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &claimSteps{tc: tc}

	ctx.Step(`^a unique request id "([^"]*)"$`, steps.uniqueRequestID)
	ctx.Step(`^a unique surname "([^"]*)"$`, steps.uniqueSurname)
	ctx.Step(`^I submit claim "([^"]*)" for:$`, steps.submitClaim)
	ctx.Step(`^I fetch claim "([^"]*)"$`, steps.fetchClaim)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveField)
	ctx.Step(`^I resolve claim "([^"]*)" with the saved person "([^"]*)"$`, steps.resolveWithPerson)
	ctx.Step(`^I resolve claim "([^"]*)" with a new record$`, steps.resolveWithNewRecord)
	ctx.Step(`^I approve claim "([^"]*)"$`, steps.approveClaim)
	ctx.Step(`^I list open "([^"]*)" review tasks$`, steps.listReviewTasks)

	ctx.Step(`^the response field "([^"]*)" should equal the saved "([^"]*)"$`, steps.fieldShouldEqualSaved)
	ctx.Step(`^the review queue should contain claim "([^"]*)"$`, steps.queueShouldContain)
}

type claimSteps struct {
	tc TestContext
}

// uniqueRequestID binds an alias to a fresh request id so scenarios can be
// rerun against a long-lived server.
func (s *claimSteps) uniqueRequestID(_ context.Context, alias string) error {
	s.tc.Save("request:"+alias, fmt.Sprintf("%s-%d", alias, time.Now().UnixNano()))
	return nil
}

// uniqueSurname saves a letters-only surname; claim tables refer to it as
// $alias.
func (s *claimSteps) uniqueSurname(_ context.Context, alias string) error {
	n := time.Now().UnixNano()
	var b strings.Builder
	b.WriteString("Smith")
	for n > 0 {
		b.WriteByte(byte('a' + n%26))
		n /= 26
	}
	s.tc.Save("surname:"+alias, b.String())
	return nil
}

func (s *claimSteps) expand(value string) string {
	if !strings.Contains(value, "$") {
		return value
	}
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == '.' || r == '@' }) {
		if alias, ok := strings.CutPrefix(part, "$"); ok {
			if surname := s.tc.Saved("surname:" + alias); surname != "" {
				value = strings.ReplaceAll(value, part, surname)
			}
		}
	}
	return value
}

func (s *claimSteps) requestID(alias string) string {
	if v := s.tc.Saved("request:" + alias); v != "" {
		return v
	}
	return alias
}

func (s *claimSteps) submitClaim(_ context.Context, alias string, table *godog.Table) error {
	body := map[string]any{"request_id": s.requestID(alias)}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("claim table rows need a field and a value")
		}
		body[strings.TrimSpace(row.Cells[0].Value)] = s.expand(strings.TrimSpace(row.Cells[1].Value))
	}
	return s.tc.POST("/v1/claims", body)
}

func (s *claimSteps) fetchClaim(_ context.Context, alias string) error {
	return s.tc.GET("/v1/claims/"+s.requestID(alias), nil)
}

func (s *claimSteps) saveField(_ context.Context, field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}

func (s *claimSteps) resolveWithPerson(_ context.Context, alias, name string) error {
	return s.tc.POST("/v1/claims/"+s.requestID(alias)+"/resolve", map[string]any{
		"person_id": s.tc.Saved(name),
	})
}

func (s *claimSteps) resolveWithNewRecord(_ context.Context, alias string) error {
	return s.tc.POST("/v1/claims/"+s.requestID(alias)+"/resolve", map[string]any{
		"create_new": true,
	})
}

func (s *claimSteps) approveClaim(_ context.Context, alias string) error {
	return s.tc.POST("/v1/claims/"+s.requestID(alias)+"/approve", nil)
}

func (s *claimSteps) listReviewTasks(_ context.Context, kind string) error {
	return s.tc.AdminGET("/admin/review-tasks?kind=" + kind)
}

func (s *claimSteps) fieldShouldEqualSaved(_ context.Context, field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got, want := fmt.Sprint(v), s.tc.Saved(name); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *claimSteps) queueShouldContain(_ context.Context, alias string) error {
	var tasks []struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &tasks); err != nil {
		return fmt.Errorf("review queue is not a JSON array: %w", err)
	}
	want := s.requestID(alias)
	for _, t := range tasks {
		if t.RequestID == want {
			return nil
		}
	}
	return fmt.Errorf("review queue has no task for %s", want)
}
