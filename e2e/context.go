package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	BaseURL    string
	AdminToken string
	HTTPClient *http.Client

	clientID  string
	clientKey string

	lastStatus int
	lastBody   []byte
	saved      map[string]string
}

// NewTestContext reads the target server from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("E2E_BASE_URL", "http://localhost:8080"),
		AdminToken: os.Getenv("E2E_ADMIN_TOKEN"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		saved:      map[string]string{},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.clientID, tc.clientKey = "", ""
	tc.lastStatus, tc.lastBody = 0, nil
	tc.saved = map[string]string{}
}

func (tc *TestContext) SetClient(id, key string) {
	tc.clientID, tc.clientKey = id, key
}

func (tc *TestContext) POST(path string, body any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}
	return tc.do(http.MethodPost, path, payload, nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// AdminGET calls an operator endpoint with the admin token.
func (tc *TestContext) AdminGET(path string) error {
	return tc.do(http.MethodGet, path, nil, map[string]string{"X-Admin-Token": tc.AdminToken})
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.clientID != "" {
		req.Header.Set("X-Client-ID", tc.clientID)
		req.Header.Set("X-Client-Key", tc.clientKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

func (tc *TestContext) LastBody() []byte { return tc.lastBody }

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

func (tc *TestContext) Saved(name string) string { return tc.saved[name] }
