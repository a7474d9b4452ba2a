package models

import (
	"strings"
	"time"

	identity "onboard/internal/identity/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// SubmitClaimRequest is a claim plus the client's idempotency key.
type SubmitClaimRequest struct {
	RequestID string `json:"request_id"`
	identity.ClaimRequest

	requestID id.RequestID
}

func (r *SubmitClaimRequest) Validate() error {
	requestID, err := id.ParseRequestID(r.RequestID)
	if err != nil {
		return err
	}
	if err := r.ClaimRequest.Validate(); err != nil {
		return err
	}
	r.requestID = requestID
	return nil
}

// Key scopes the request id to the calling client.
func (r *SubmitClaimRequest) Key(clientID id.ClientID) id.ClaimKey {
	return id.ClaimKey{ClientID: clientID, RequestID: r.requestID}
}

// ResolveRequest adjudicates a claim with potential matches: either attach
// one of the candidates or create a new record, never both.
type ResolveRequest struct {
	PersonID  string `json:"person_id"`
	CreateNew bool   `json:"create_new"`

	personID id.PersonID
}

func (r *ResolveRequest) Validate() error {
	raw := strings.TrimSpace(r.PersonID)
	switch {
	case raw == "" && !r.CreateNew:
		return dErrors.New(dErrors.CodeValidation, "one of person_id or create_new is required")
	case raw != "" && r.CreateNew:
		return dErrors.New(dErrors.CodeValidation, "person_id and create_new are mutually exclusive")
	case raw != "":
		personID, err := id.ParsePersonID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "person_id must be a uuid")
		}
		r.personID = personID
	}
	return nil
}

// MatchedPersonID is the nil id when CreateNew is set.
func (r *ResolveRequest) MatchedPersonID() id.PersonID {
	return r.personID
}

// ClaimResponse is the wire form of a CompletedClaim.
type ClaimResponse struct {
	RequestID                 string                `json:"request_id"`
	Status                    ClaimStatus           `json:"status"`
	Outcome                   identity.MatchOutcome `json:"outcome,omitempty"`
	PotentialMatchesPersonIDs []id.PersonID         `json:"potential_matches_person_ids,omitempty"`
	PersonID                  *id.PersonID          `json:"person_id,omitempty"`
	ReferenceNumber           string                `json:"reference_number,omitempty"`
	Token                     string                `json:"token,omitempty"`
	FurtherChecksRequired     bool                  `json:"further_checks_required"`
	ReviewTaskID              *id.ReviewTaskID      `json:"review_task_id,omitempty"`
}

func NewClaimResponse(c *CompletedClaim) ClaimResponse {
	resp := ClaimResponse{
		RequestID:             c.ClaimKey.RequestID.String(),
		Status:                c.Status,
		PersonID:              c.PersonID,
		ReferenceNumber:       c.ReferenceNumber,
		Token:                 c.Token,
		FurtherChecksRequired: c.FurtherChecksRequired,
		ReviewTaskID:          c.ReviewTaskID,
	}
	if c.MatchResult != nil {
		resp.Outcome = c.MatchResult.Outcome
		resp.PotentialMatchesPersonIDs = c.MatchResult.PotentialMatchesPersonIDs
	}
	return resp
}

// ReviewTaskResponse is the wire form of a ReviewTask.
type ReviewTaskResponse struct {
	ID        id.ReviewTaskID `json:"id"`
	ClientID  string          `json:"client_id"`
	RequestID string          `json:"request_id"`
	Kind      ReviewTaskKind  `json:"kind"`
	PersonIDs []id.PersonID   `json:"person_ids"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewReviewTaskResponse(t *ReviewTask) ReviewTaskResponse {
	return ReviewTaskResponse{
		ID:        t.ID,
		ClientID:  t.ClaimKey.ClientID.String(),
		RequestID: t.ClaimKey.RequestID.String(),
		Kind:      t.Kind,
		PersonIDs: t.PersonIDs,
		CreatedAt: t.CreatedAt,
	}
}
