package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/v1/claims/{requestID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/v1/claims/a", "/v1/claims/b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	assert.Equal(t, 1, promtestutil.CollectAndCount(m.RequestDuration))
	assert.Equal(t, float64(0), promtestutil.ToFloat64(m.InFlight))
	h, err := m.RequestDuration.GetMetricWithLabelValues(http.MethodGet, "/v1/claims/{requestID}", "404")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestLatencyMiddlewareNilMetricsIsPassThrough(t *testing.T) {
	called := false
	h := LatencyMiddleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
