// Package admin guards the operator surface: the review queue and alias
// table reloads.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	request "onboard/pkg/platform/middleware/request"
)

const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken admits requests carrying the configured operator token.
// With no token configured every admin route answers 401.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(expectedToken)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(HeaderAdminToken))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				logger.WarnContext(r.Context(), "rejected admin request",
					"request_id", request.GetRequestID(r.Context()),
					"path", r.URL.Path,
					"token_present", len(got) > 0,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
