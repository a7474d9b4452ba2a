package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/metadata"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
)

// AliasReloader replaces the synonyms table from its fixture.
type AliasReloader interface {
	Reload(ctx context.Context) (int, error)
}

type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.SecurityEvent)
}

// AdminHandler serves operator endpoints for the alias table.
type AdminHandler struct {
	logger   *slog.Logger
	reloader AliasReloader
	security SecurityPublisher
}

func NewAdmin(reloader AliasReloader, security SecurityPublisher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		reloader: reloader,
		security: security,
	}
}

// Register registers the admin routes. Callers mount it behind the admin token.
func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/aliases/reload", h.HandleReloadAliases)
}

type reloadResponse struct {
	Names int `json:"names"`
}

func (h *AdminHandler) HandleReloadAliases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	n, err := h.reloader.Reload(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reload aliases",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload aliases"))
		return
	}

	if h.security != nil {
		h.security.Emit(ctx, audit.SecurityEvent{
			Timestamp: requestcontext.Now(ctx),
			Subject:   "name_synonyms",
			Action:    audit.EventAliasesReloaded,
			Reason:    strconv.Itoa(n) + " names loaded",
			IP:        metadata.GetClientIP(ctx),
			RequestID: requestID,
			Severity:  audit.SeverityInfo,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, reloadResponse{Names: n})
}
