package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "last_name is required"), http.StatusBadRequest, "validation_error", "last_name is required"},
		{"conflict", dErrors.New(dErrors.CodeConflict, "claim already resolved"), http.StatusConflict, "conflict", "claim already resolved"},
		{"wrapped not found", fmt.Errorf("lookup: %w", dErrors.New(dErrors.CodeNotFound, "claim not found")), http.StatusNotFound, "not_found", "claim not found"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "registry offline"), http.StatusServiceUnavailable, "service_unavailable", "registry offline"},
		{"internal hides detail", dErrors.New(dErrors.CodeInternal, "pq: relation does not exist"), http.StatusInternalServerError, "internal_error", ""},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["error"])
			desc, present := body["error_description"]
			assert.Equal(t, tc.description != "", present)
			assert.Equal(t, tc.description, desc)
		})
	}
}

type pingRequest struct {
	Name string `json:"name"`
}

func (p *pingRequest) Validate() error {
	if p.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	decode := func(body string) (*pingRequest, bool, *httptest.ResponseRecorder) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[pingRequest](w, r, nil, r.Context(), "rid")
		return req, ok, w
	}

	t.Run("valid body", func(t *testing.T) {
		req, ok, _ := decode(`{"name":"x"}`)
		require.True(t, ok)
		assert.Equal(t, "x", req.Name)
	})

	t.Run("validation failure writes 400", func(t *testing.T) {
		_, ok, w := decode(`{"name":""}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		_, ok, w := decode(`{"name":"x","extra":1}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
