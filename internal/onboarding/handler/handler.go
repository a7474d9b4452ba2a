package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "onboard/internal/identity/models"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
)

// Service defines the interface for claim onboarding.
type Service interface {
	Submit(ctx context.Context, key id.ClaimKey, claim identity.IdentityClaim) (*models.CompletedClaim, error)
	GetClaim(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error)
	ResolveWithMatchedPerson(ctx context.Context, key id.ClaimKey, personID id.PersonID) (*models.CompletedClaim, error)
	ResolveWithNewRecord(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error)
	ApproveFurtherChecks(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error)
	ListOpenReviewTasks(ctx context.Context, kind models.ReviewTaskKind) ([]*models.ReviewTask, error)
}

// Handler handles claim onboarding endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the client-facing claim routes. Callers mount it
// behind client authentication; every claim is scoped to the calling client.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/claims", h.HandleSubmit)
	r.Get("/v1/claims/{requestID}", h.HandleGet)
	r.Post("/v1/claims/{requestID}/resolve", h.HandleResolve)
	r.Post("/v1/claims/{requestID}/approve", h.HandleApprove)
}

// RegisterAdmin registers the review queue. Callers mount it behind the
// admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/review-tasks", h.HandleListReviewTasks)
}

// HandleSubmit stores a claim and resolves it as far as matching allows.
// Completed claims answer 200, claims awaiting a human answer 202.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SubmitClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key := req.Key(requestcontext.ClientID(ctx))
	out, err := h.service.Submit(ctx, key, req.Claim())
	if err != nil {
		h.logFailure(ctx, "failed to submit claim", key, err)
		httputil.WriteError(w, err)
		return
	}
	writeClaim(w, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := claimKey(w, r)
	if !ok {
		return
	}

	out, err := h.service.GetClaim(ctx, key)
	if err != nil {
		h.logFailure(ctx, "failed to get claim", key, err)
		httputil.WriteError(w, err)
		return
	}
	writeClaim(w, out)
}

// HandleResolve adjudicates a claim that matched more than one candidate.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	key, ok := claimKey(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		out *models.CompletedClaim
		err error
	)
	if req.CreateNew {
		out, err = h.service.ResolveWithNewRecord(ctx, key)
	} else {
		out, err = h.service.ResolveWithMatchedPerson(ctx, key, req.MatchedPersonID())
	}
	if err != nil {
		h.logFailure(ctx, "failed to resolve claim", key, err)
		httputil.WriteError(w, err)
		return
	}
	writeClaim(w, out)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := claimKey(w, r)
	if !ok {
		return
	}

	out, err := h.service.ApproveFurtherChecks(ctx, key)
	if err != nil {
		h.logFailure(ctx, "failed to approve further checks", key, err)
		httputil.WriteError(w, err)
		return
	}
	writeClaim(w, out)
}

func (h *Handler) HandleListReviewTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := models.ReviewTaskKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.ReviewTaskPotentialDuplicate
	}

	tasks, err := h.service.ListOpenReviewTasks(ctx, kind)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list review tasks",
			"request_id", request.GetRequestID(ctx),
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]models.ReviewTaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = models.NewReviewTaskResponse(t)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func claimKey(w http.ResponseWriter, r *http.Request) (id.ClaimKey, bool) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ClaimKey{}, false
	}
	return id.ClaimKey{ClientID: requestcontext.ClientID(r.Context()), RequestID: requestID}, true
}

func writeClaim(w http.ResponseWriter, out *models.CompletedClaim) {
	status := http.StatusOK
	if out.Status != models.ClaimStatusCompleted {
		status = http.StatusAccepted
	}
	httputil.WriteJSON(w, status, models.NewClaimResponse(out))
}

// logFailure logs server-side failures; client errors are left to the
// response.
func (h *Handler) logFailure(ctx context.Context, msg string, key id.ClaimKey, err error) {
	if dErrors.CodeOf(err) != dErrors.CodeInternal && !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", request.GetRequestID(ctx),
		"client_id", key.ClientID.String(),
		"claim_request_id", key.RequestID.String(),
		"error", err,
	)
}
