package common

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	SetClient(id, key string)
	LastStatus() int
	LastBody() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the onboarding service is healthy$`, steps.serviceIsHealthy)
	ctx.Step(`^I am the client "([^"]*)"$`, steps.actAsClient)
	ctx.Step(`^I am the client "([^"]*)" with key "([^"]*)"$`, steps.actAsClientWithKey)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be present$`, steps.fieldShouldBePresent)
	ctx.Step(`^the response field "([^"]*)" should be absent$`, steps.fieldShouldBeAbsent)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsHealthy(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

// actAsClient reads the key from E2E_CLIENT_KEY_<CLIENT> with dashes
// replaced by underscores.
func (s *commonSteps) actAsClient(_ context.Context, clientID string) error {
	envKey := "E2E_CLIENT_KEY_" + strings.ToUpper(strings.ReplaceAll(clientID, "-", "_"))
	key := os.Getenv(envKey)
	if key == "" {
		return fmt.Errorf("%s not set", envKey)
	}
	s.tc.SetClient(clientID, key)
	return nil
}

func (s *commonSteps) actAsClientWithKey(_ context.Context, clientID, key string) error {
	s.tc.SetClient(clientID, key)
	return nil
}

func (s *commonSteps) statusShouldBe(_ context.Context, status int) error {
	if got := s.tc.LastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(_ context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBePresent(_ context.Context, field string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if v == nil || v == "" {
		return fmt.Errorf("expected %s to be set", field)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeAbsent(_ context.Context, field string) error {
	if v, err := s.tc.GetResponseField(field); err == nil && v != nil {
		return fmt.Errorf("expected %s to be absent, got %v", field, v)
	}
	return nil
}
