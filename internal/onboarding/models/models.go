package models

import (
	"time"

	identity "onboard/internal/identity/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// ClaimStatus is the lifecycle state of a submitted claim.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusCompleted ClaimStatus = "completed"
)

// Claim is a submitted identity claim and its resolution state. One claim
// exists per claim key.
//
// Invariants:
//   - a completed claim always has ResolvedPersonID and Token set
//   - ResolvedPersonID never changes once set
type Claim struct {
	ID                   id.ClaimID
	Key                  id.ClaimKey
	Identity             identity.IdentityClaim
	Status               ClaimStatus
	MatchResult          *identity.MatchResult
	ResolvedPersonID     *id.PersonID
	ReferenceNumber      string
	HeldForFurtherChecks bool
	Token                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
}

// NewClaim creates a pending claim.
func NewClaim(claimID id.ClaimID, key id.ClaimKey, identityClaim identity.IdentityClaim, now time.Time) (*Claim, error) {
	if claimID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim id is required")
	}
	if key.ClientID.IsNil() || key.RequestID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim key is required")
	}
	if err := identityClaim.Validate(); err != nil {
		return nil, err
	}
	return &Claim{
		ID:        claimID,
		Key:       key,
		Identity:  identityClaim,
		Status:    ClaimStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Claim) IsCompleted() bool {
	return c.Status == ClaimStatusCompleted
}

// RecordMatch stores the outcome of matching. The first result wins so a
// resubmission replays the original outcome.
func (c *Claim) RecordMatch(result identity.MatchResult, now time.Time) {
	if c.MatchResult != nil {
		return
	}
	c.MatchResult = &result
	c.UpdatedAt = now
}

// Resolve attaches the person the claim denotes. Attaching a different
// person to an already resolved claim is rejected.
func (c *Claim) Resolve(personID id.PersonID, referenceNumber string, now time.Time) error {
	if c.ResolvedPersonID != nil {
		if *c.ResolvedPersonID != personID {
			return dErrors.New(dErrors.CodeConflict, "claim is already resolved to a different person")
		}
		return nil
	}
	c.ResolvedPersonID = &personID
	c.ReferenceNumber = referenceNumber
	c.UpdatedAt = now
	return nil
}

// HoldForFurtherChecks keeps a resolved claim pending until approved.
func (c *Claim) HoldForFurtherChecks(now time.Time) error {
	if c.ResolvedPersonID == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "claim must be resolved before it is held")
	}
	c.HeldForFurtherChecks = true
	c.UpdatedAt = now
	return nil
}

// Complete finishes a resolved claim with its terminal token.
func (c *Claim) Complete(token string, now time.Time) error {
	if c.IsCompleted() {
		return dErrors.New(dErrors.CodeConflict, "claim is already completed")
	}
	if c.ResolvedPersonID == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "claim must be resolved before it completes")
	}
	if token == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "completion token is required")
	}
	c.Status = ClaimStatusCompleted
	c.HeldForFurtherChecks = false
	c.Token = token
	c.CompletedAt = &now
	c.UpdatedAt = now
	return nil
}

// ReviewTaskKind names why a claim needs a human.
type ReviewTaskKind string

const (
	ReviewTaskPotentialDuplicate ReviewTaskKind = "potential_duplicate"
	ReviewTaskFurtherChecks      ReviewTaskKind = "further_checks"
)

type ReviewTaskStatus string

const (
	ReviewTaskOpen   ReviewTaskStatus = "open"
	ReviewTaskClosed ReviewTaskStatus = "closed"
)

// ReviewTask is a manual-review work item. At most one task of each kind is
// open per claim.
type ReviewTask struct {
	ID        id.ReviewTaskID
	ClaimKey  id.ClaimKey
	Kind      ReviewTaskKind
	Status    ReviewTaskStatus
	PersonIDs []id.PersonID
	CreatedAt time.Time
	ClosedAt  *time.Time
}

func NewReviewTask(taskID id.ReviewTaskID, key id.ClaimKey, kind ReviewTaskKind, personIDs []id.PersonID, now time.Time) *ReviewTask {
	return &ReviewTask{
		ID:        taskID,
		ClaimKey:  key,
		Kind:      kind,
		Status:    ReviewTaskOpen,
		PersonIDs: append([]id.PersonID(nil), personIDs...),
		CreatedAt: now,
	}
}

func (t *ReviewTask) IsOpen() bool {
	return t.Status == ReviewTaskOpen
}

// CompletedClaim is the externally visible state of a claim after a
// resolution step. Status is pending while further checks are outstanding
// or while potential matches await adjudication.
type CompletedClaim struct {
	ClaimKey              id.ClaimKey
	Status                ClaimStatus
	MatchResult           *identity.MatchResult
	PersonID              *id.PersonID
	ReferenceNumber       string
	Token                 string
	FurtherChecksRequired bool
	ReviewTaskID          *id.ReviewTaskID
}
