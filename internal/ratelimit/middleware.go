package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
)

// Limiter enforces a per-client request budget.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewLimiter(store Store, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, logger: logger}
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}

// PerClient must run after client authentication. Store failures let the
// request through.
func (l *Limiter) PerClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if l == nil || l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		clientID := requestcontext.ClientID(ctx)

		result, err := l.store.Allow(ctx, "client:"+clientID.String(), l.limit, l.window)
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to check client rate limit",
				"request_id", request.GetRequestID(ctx),
				"client_id", clientID.String(),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "client request quota exhausted",
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
