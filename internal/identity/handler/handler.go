package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/identity/models"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/request"
)

// Service defines the interface for identity matching.
type Service interface {
	MatchPersons(ctx context.Context, claim models.IdentityClaim) (models.MatchResult, error)
}

// Handler exposes the matching engine as a dry run: nothing is written.
type Handler struct {
	logger  *slog.Logger
	matcher Service
}

func New(matcher Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		matcher: matcher,
	}
}

// Register registers the identity routes with the chi router. Callers mount
// it behind client authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/persons/match", h.HandleMatch)
}

// HandleMatch classifies a claim against the registry without resolving it.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.matcher.MatchPersons(ctx, req.Claim())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to match persons",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry unavailable, retry later"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
