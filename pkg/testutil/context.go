package testutil

import (
	"net/http"
	"time"

	id "onboard/pkg/domain"
	"onboard/pkg/requestcontext"
)

// WithClient adds an authenticated API client to the request context,
// as the client auth middleware would.
func WithClient(req *http.Request, clientID string) *http.Request {
	parsed, err := id.ParseClientID(clientID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithClientID(req.Context(), parsed))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
