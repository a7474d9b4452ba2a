package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"onboard/internal/platform/metrics"
	"onboard/pkg/platform/middleware/admin"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
	"onboard/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	dbErr  error
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("portal-key"), bcrypt.MinCost)
	s.Require().NoError(err)
	verifier, err := auth.NewBcryptVerifier(map[string]string{"teacher-portal": string(hash)})
	s.Require().NoError(err)

	reg := prometheus.NewRegistry()
	s.dbErr = nil
	s.router = NewRouter(Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    metrics.New(reg),
		Gatherer:   reg,
		Clients:    verifier,
		AdminToken: "admin-secret",
		Health: map[string]HealthCheck{
			"postgres": func(context.Context) error { return s.dbErr },
		},
		ClientMiddleware: []func(http.Handler) http.Handler{
			func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("X-Seen-Client", requestcontext.ClientID(r.Context()).String())
					next.ServeHTTP(w, r)
				})
			},
		},
		ClientRoutes: []Registrar{RegistrarFunc(func(r chi.Router) {
			r.Get("/v1/whoami", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(requestcontext.ClientID(r.Context())))
			})
		})},
		AdminRoutes: []Registrar{RegistrarFunc(func(r chi.Router) {
			r.Get("/admin/ping", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})},
	})
}

func (s *RouterSuite) get(path string, headers map[string]string) *http.Response {
	req := testutil.WithHeaders(testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil), headers)
	return testutil.DoRequest(s.router, req).Result()
}

func (s *RouterSuite) TestHealth() {
	resp := s.get("/health", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get(request.HeaderRequestID))

	s.dbErr = errors.New("connection refused")
	resp = s.get("/health", nil)
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.JSONEq(`{"status":"unavailable","failed":["postgres"]}`, string(body))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.get("/health", nil)

	resp := s.get("/metrics", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "onboard_http_request_duration_seconds")
}

func (s *RouterSuite) TestClientRoutesRequireCredentials() {
	resp := s.get("/v1/whoami", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.get("/v1/whoami", map[string]string{auth.HeaderClientID: "teacher-portal", auth.HeaderClientKey: "wrong"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.get("/v1/whoami", map[string]string{auth.HeaderClientID: "teacher-portal", auth.HeaderClientKey: "portal-key"})
	s.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("teacher-portal", string(body))
	s.Equal("teacher-portal", resp.Header.Get("X-Seen-Client"))
}

func (s *RouterSuite) TestAdminRoutesRequireToken() {
	resp := s.get("/admin/ping", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.get("/admin/ping", map[string]string{admin.HeaderAdminToken: "admin-secret"})
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *RouterSuite) TestRequestIDIsPropagated() {
	resp := s.get("/health", map[string]string{request.HeaderRequestID: "trace-123"})
	s.Equal("trace-123", resp.Header.Get(request.HeaderRequestID))
}
