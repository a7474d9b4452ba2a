// Package auth authenticates API clients by id and shared key.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	request "onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
)

const (
	HeaderClientID  = "X-Client-ID"
	HeaderClientKey = "X-Client-Key"
)

// KeyVerifier checks a presented key for a client.
type KeyVerifier interface {
	Verify(ctx context.Context, clientID id.ClientID, key string) error
}

// BcryptVerifier verifies keys against configured bcrypt hashes.
type BcryptVerifier struct {
	hashes map[id.ClientID][]byte
}

// NewBcryptVerifier builds a verifier from client id → bcrypt hash.
func NewBcryptVerifier(hashes map[string]string) (*BcryptVerifier, error) {
	out := make(map[id.ClientID][]byte, len(hashes))
	for rawID, hash := range hashes {
		clientID, err := id.ParseClientID(rawID)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", rawID, err)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("client %q: invalid bcrypt hash: %w", rawID, err)
		}
		out[clientID] = []byte(hash)
	}
	return &BcryptVerifier{hashes: out}, nil
}

func (v *BcryptVerifier) Verify(_ context.Context, clientID id.ClientID, key string) error {
	hash, ok := v.hashes[clientID]
	if !ok {
		// Burn comparable time for unknown clients.
		_ = bcrypt.CompareHashAndPassword(unknownClientHash, []byte(key))
		return dErrors.New(dErrors.CodeUnauthorized, "unknown client")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid client key")
	}
	return nil
}

var unknownClientHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-client"), bcrypt.MinCost)

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireClient rejects requests without a valid client id and key, and
// stores the authenticated client on the context.
func RequireClient(verifier KeyVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			clientID, err := id.ParseClientID(r.Header.Get(HeaderClientID))
			key := r.Header.Get(HeaderClientKey)
			if err != nil || key == "" {
				logger.WarnContext(ctx, "unauthorized access - missing client credentials",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid client credentials")
				return
			}

			if err := verifier.Verify(ctx, clientID, key); err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - client key rejected",
						"client_id", clientID,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid client credentials")
					return
				}
				logger.ErrorContext(ctx, "failed to verify client key",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to verify client")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithClientID(ctx, clientID)))
		})
	}
}
