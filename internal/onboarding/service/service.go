// Package service orchestrates claim onboarding: storing a submitted claim,
// matching it against the registry, and resolving it to an existing or new
// person record.
//
// Resolution is idempotent per claim key. Every mutation of a claim happens
// inside a ClaimStoreTx keyed by that claim, so concurrent or repeated
// requests for the same key never create a second person record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	identity "onboard/internal/identity/models"
	"onboard/internal/onboarding/metrics"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

const tracerName = "onboard/onboarding"

type ClaimStore interface {
	// Create fails with sentinel.ErrConflict when the key is taken.
	Create(ctx context.Context, claim *models.Claim) error
	FindByKey(ctx context.Context, key id.ClaimKey) (*models.Claim, error)
	// FindByKeyForUpdate locks the claim for the rest of the transaction.
	FindByKeyForUpdate(ctx context.Context, key id.ClaimKey) (*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) error
}

type ReviewTaskStore interface {
	// Create fails with sentinel.ErrConflict when an open task of the same
	// kind already exists for the claim.
	Create(ctx context.Context, task *models.ReviewTask) error
	FindOpen(ctx context.Context, key id.ClaimKey, kind models.ReviewTaskKind) (*models.ReviewTask, error)
	ListByClaim(ctx context.Context, key id.ClaimKey) ([]*models.ReviewTask, error)
	ListOpen(ctx context.Context, kind models.ReviewTaskKind) ([]*models.ReviewTask, error)
	Close(ctx context.Context, taskID id.ReviewTaskID, closedAt time.Time) error
}

type PersonStore interface {
	Create(ctx context.Context, person *identity.PersonRecord) error
	FindByID(ctx context.Context, personID id.PersonID) (*identity.PersonRecord, error)
	NextReferenceNumber(ctx context.Context) (string, error)
}

// Matcher is the identity resolution engine.
type Matcher interface {
	MatchPersons(ctx context.Context, claim identity.IdentityClaim) (identity.MatchResult, error)
}

type TokenIssuer interface {
	IssueCompletionToken(key id.ClaimKey, personID id.PersonID, referenceNumber string, issuedAt time.Time) (string, error)
}

// AuditPublisher records registry changes. Emit failures abort the
// surrounding transaction.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// OpsTracker records routine activity on a best-effort basis.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Service resolves identity claims into person records.
type Service struct {
	claims  ClaimStore
	tasks   ReviewTaskStore
	persons PersonStore
	tx      ClaimStoreTx
	matcher Matcher
	tokens  TokenIssuer

	furtherChecksClients map[id.ClientID]struct{}

	auditor AuditPublisher
	ops     OpsTracker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithOpsTracker(t OpsTracker) Option {
	return func(s *Service) {
		s.ops = t
	}
}

// WithFurtherChecksClients configures the clients whose claims are held for
// further checks when the resolved person carries an alert or a teacher status.
func WithFurtherChecksClients(clients ...id.ClientID) Option {
	return func(s *Service) {
		for _, c := range clients {
			s.furtherChecksClients[c] = struct{}{}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(
	claims ClaimStore,
	tasks ReviewTaskStore,
	persons PersonStore,
	tx ClaimStoreTx,
	matcher Matcher,
	tokens TokenIssuer,
	opts ...Option,
) *Service {
	s := &Service{
		claims:               claims,
		tasks:                tasks,
		persons:              persons,
		tx:                   tx,
		matcher:              matcher,
		tokens:               tokens,
		furtherChecksClients: map[id.ClientID]struct{}{},
		tracer:               otel.Tracer(tracerName),
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores the claim, matches it and resolves it as far as it can
// without a human:
//   - DefiniteMatch resolves to the matched person
//   - NoMatches creates a new person record
//   - PotentialMatches opens a potential_duplicate review task
//
// Resubmitting a key replays the stored outcome without matching again.
// Resubmitting a key with different identity data is a conflict.
func (s *Service) Submit(ctx context.Context, key id.ClaimKey, claim identity.IdentityClaim) (*models.CompletedClaim, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Submit", trace.WithAttributes(
		attribute.String("claim.client_id", key.ClientID.String()),
	))
	defer span.End()

	if err := claim.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.ensureClaim(ctx, key, claim)
	if err != nil {
		return nil, err
	}
	if stored.MatchResult != nil {
		s.metrics.IncReplayed()
		return s.view(ctx, s.tasks, stored)
	}

	s.track(ctx, audit.EventClaimSubmitted, key, "")

	result, err := s.matcher.MatchPersons(ctx, claim)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry unavailable, retry later")
	}
	span.SetAttributes(attribute.String("match.outcome", string(result.Outcome)))
	s.track(ctx, audit.EventIdentityMatched, key, string(result.Outcome))

	var out *models.CompletedClaim
	err = s.tx.RunInTx(ctx, key, func(ctx context.Context, stores TxStores) error {
		locked, err := s.lockClaim(ctx, stores, key)
		if err != nil {
			return err
		}
		if locked.MatchResult != nil {
			// A concurrent submission got here first.
			out, err = s.view(ctx, stores.ReviewTasks, locked)
			return err
		}

		now := s.now()
		locked.RecordMatch(result, now)
		s.metrics.IncSubmitted(string(result.Outcome))

		switch result.Outcome {
		case identity.OutcomeDefiniteMatch:
			out, err = s.resolveWithMatchedPerson(ctx, stores, locked, result.PersonID)
		case identity.OutcomeNoMatches:
			out, err = s.resolveWithNewRecord(ctx, stores, locked)
		default:
			out, err = s.awaitAdjudication(ctx, stores, locked, result.PotentialMatchesPersonIDs)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveWithMatchedPerson attaches an existing person to the claim and
// completes it, or holds it for further checks. Once the claim is resolved
// any repeat returns the recorded outcome, whichever person it names.
func (s *Service) ResolveWithMatchedPerson(ctx context.Context, key id.ClaimKey, personID id.PersonID) (*models.CompletedClaim, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.ResolveWithMatchedPerson")
	defer span.End()

	var out *models.CompletedClaim
	err := s.tx.RunInTx(ctx, key, func(ctx context.Context, stores TxStores) error {
		claim, err := s.lockClaim(ctx, stores, key)
		if err != nil {
			return err
		}
		out, err = s.resolveWithMatchedPerson(ctx, stores, claim, personID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveWithNewRecord creates a person record from the claim and completes
// it. A claim that is already resolved is returned unchanged; a second
// record is never created.
func (s *Service) ResolveWithNewRecord(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.ResolveWithNewRecord")
	defer span.End()

	var out *models.CompletedClaim
	err := s.tx.RunInTx(ctx, key, func(ctx context.Context, stores TxStores) error {
		claim, err := s.lockClaim(ctx, stores, key)
		if err != nil {
			return err
		}
		out, err = s.resolveWithNewRecord(ctx, stores, claim)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveFurtherChecks completes a claim that was held for further checks.
func (s *Service) ApproveFurtherChecks(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.ApproveFurtherChecks")
	defer span.End()

	var out *models.CompletedClaim
	err := s.tx.RunInTx(ctx, key, func(ctx context.Context, stores TxStores) error {
		claim, err := s.lockClaim(ctx, stores, key)
		if err != nil {
			return err
		}
		if claim.IsCompleted() {
			out, err = s.view(ctx, stores.ReviewTasks, claim)
			return err
		}
		if !claim.HeldForFurtherChecks {
			return dErrors.New(dErrors.CodeConflict, "claim is not awaiting further checks")
		}

		if err := s.complete(ctx, stores, claim); err != nil {
			return err
		}
		if err := s.closeOpenTask(ctx, stores, key, models.ReviewTaskFurtherChecks); err != nil {
			return err
		}
		if err := s.emit(ctx, audit.EventFurtherChecksApproved, claim, ""); err != nil {
			return err
		}
		s.metrics.IncCompleted("further_checks_approved")
		out, err = s.view(ctx, stores.ReviewTasks, claim)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetClaim returns the current state of a claim.
func (s *Service) GetClaim(ctx context.Context, key id.ClaimKey) (*models.CompletedClaim, error) {
	claim, err := s.claims.FindByKey(ctx, key)
	if err != nil {
		return nil, mapClaimLookupError(err)
	}
	return s.view(ctx, s.tasks, claim)
}

// ListOpenReviewTasks returns the open review tasks of kind, oldest first.
func (s *Service) ListOpenReviewTasks(ctx context.Context, kind models.ReviewTaskKind) ([]*models.ReviewTask, error) {
	switch kind {
	case models.ReviewTaskPotentialDuplicate, models.ReviewTaskFurtherChecks:
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown review task kind")
	}
	tasks, err := s.tasks.ListOpen(ctx, kind)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list review tasks")
	}
	return tasks, nil
}

// RequiresFurtherChecks reports whether a claim from clientID resolving to
// personID must be held for further checks: the client opted in and the
// person has an active alert or a QTS or EYTS award.
func (s *Service) RequiresFurtherChecks(ctx context.Context, personID id.PersonID, clientID id.ClientID) (bool, error) {
	if !s.flagsFurtherChecks(clientID) {
		return false, nil
	}
	person, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		return false, mapPersonLookupError(err)
	}
	return s.requiresFurtherChecks(person, clientID), nil
}

func (s *Service) flagsFurtherChecks(clientID id.ClientID) bool {
	_, ok := s.furtherChecksClients[clientID]
	return ok
}

func (s *Service) requiresFurtherChecks(person *identity.PersonRecord, clientID id.ClientID) bool {
	if !s.flagsFurtherChecks(clientID) {
		return false
	}
	return person.HasActiveAlert || person.HasQts() || person.HasEyts()
}

// ensureClaim stores a new pending claim or returns the one already stored
// under key.
func (s *Service) ensureClaim(ctx context.Context, key id.ClaimKey, claim identity.IdentityClaim) (*models.Claim, error) {
	fresh, err := models.NewClaim(id.NewClaimID(), key, claim, s.now())
	if err != nil {
		return nil, err
	}
	err = s.claims.Create(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	if !errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store claim")
	}

	stored, err := s.claims.FindByKey(ctx, key)
	if err != nil {
		return nil, mapClaimLookupError(err)
	}
	if stored.Identity != claim {
		return nil, dErrors.New(dErrors.CodeConflict, "request_id was already used for a different claim")
	}
	return stored, nil
}

func (s *Service) lockClaim(ctx context.Context, stores TxStores, key id.ClaimKey) (*models.Claim, error) {
	claim, err := stores.Claims.FindByKeyForUpdate(ctx, key)
	if err != nil {
		return nil, mapClaimLookupError(err)
	}
	return claim, nil
}

func (s *Service) resolveWithMatchedPerson(ctx context.Context, stores TxStores, claim *models.Claim, personID id.PersonID) (*models.CompletedClaim, error) {
	if claim.ResolvedPersonID != nil {
		if *claim.ResolvedPersonID != personID && s.logger != nil {
			s.logger.WarnContext(ctx, "claim already resolved to another person",
				"request_id", requestcontext.RequestID(ctx),
				"claim_request_id", claim.Key.RequestID.String(),
				"resolved_person_id", claim.ResolvedPersonID.String(),
				"requested_person_id", personID.String(),
			)
		}
		return s.view(ctx, stores.ReviewTasks, claim)
	}

	person, err := stores.Persons.FindByID(ctx, personID)
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	if !person.IsActive() {
		return nil, dErrors.New(dErrors.CodeConflict, "person record has been merged")
	}

	if err := claim.Resolve(person.ID, person.ReferenceNumber, s.now()); err != nil {
		return nil, err
	}
	if err := s.closeOpenTask(ctx, stores, claim.Key, models.ReviewTaskPotentialDuplicate); err != nil {
		return nil, err
	}
	return s.finish(ctx, stores, claim, person, "matched")
}

func (s *Service) resolveWithNewRecord(ctx context.Context, stores TxStores, claim *models.Claim) (*models.CompletedClaim, error) {
	if claim.ResolvedPersonID != nil {
		return s.view(ctx, stores.ReviewTasks, claim)
	}

	ref, err := stores.Persons.NextReferenceNumber(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate reference number")
	}
	person, err := identity.NewPersonRecord(id.NewPersonID(), ref, claim.Identity, s.now())
	if err != nil {
		return nil, err
	}
	if err := stores.Persons.Create(ctx, person); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person record")
	}
	s.metrics.IncPersonsCreated()

	if err := claim.Resolve(person.ID, person.ReferenceNumber, s.now()); err != nil {
		return nil, err
	}
	if err := s.emit(ctx, audit.EventPersonCreated, claim, "created"); err != nil {
		return nil, err
	}
	if err := s.closeOpenTask(ctx, stores, claim.Key, models.ReviewTaskPotentialDuplicate); err != nil {
		return nil, err
	}
	return s.finish(ctx, stores, claim, person, "new_record")
}

// finish either completes a resolved claim or holds it for further checks.
func (s *Service) finish(ctx context.Context, stores TxStores, claim *models.Claim, person *identity.PersonRecord, resolution string) (*models.CompletedClaim, error) {
	if s.requiresFurtherChecks(person, claim.Key.ClientID) {
		if err := claim.HoldForFurtherChecks(s.now()); err != nil {
			return nil, err
		}
		if err := stores.Claims.Update(ctx, claim); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim")
		}
		if err := s.openTask(ctx, stores, claim, models.ReviewTaskFurtherChecks, []id.PersonID{person.ID}); err != nil {
			return nil, err
		}
		s.logInfo(ctx, "claim held for further checks", claim)
		return s.view(ctx, stores.ReviewTasks, claim)
	}

	if err := s.complete(ctx, stores, claim); err != nil {
		return nil, err
	}
	s.metrics.IncCompleted(resolution)
	return s.view(ctx, stores.ReviewTasks, claim)
}

func (s *Service) complete(ctx context.Context, stores TxStores, claim *models.Claim) error {
	now := s.now()
	token, err := s.tokens.IssueCompletionToken(claim.Key, *claim.ResolvedPersonID, claim.ReferenceNumber, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue completion token")
	}
	if err := claim.Complete(token, now); err != nil {
		return err
	}
	if err := stores.Claims.Update(ctx, claim); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim")
	}
	if err := s.emit(ctx, audit.EventClaimCompleted, claim, string(models.ClaimStatusCompleted)); err != nil {
		return err
	}
	s.logInfo(ctx, "claim completed", claim)
	return nil
}

func (s *Service) awaitAdjudication(ctx context.Context, stores TxStores, claim *models.Claim, candidates []id.PersonID) (*models.CompletedClaim, error) {
	if err := stores.Claims.Update(ctx, claim); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim")
	}
	if err := s.openTask(ctx, stores, claim, models.ReviewTaskPotentialDuplicate, candidates); err != nil {
		return nil, err
	}
	return s.view(ctx, stores.ReviewTasks, claim)
}

// openTask creates a review task unless one of the same kind is already open.
func (s *Service) openTask(ctx context.Context, stores TxStores, claim *models.Claim, kind models.ReviewTaskKind, personIDs []id.PersonID) error {
	task := models.NewReviewTask(id.NewReviewTaskID(), claim.Key, kind, personIDs, s.now())
	if err := stores.ReviewTasks.Create(ctx, task); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create review task")
	}
	s.metrics.IncReviewTask(string(kind))
	return s.emit(ctx, audit.EventReviewTaskCreated, claim, string(kind))
}

func (s *Service) closeOpenTask(ctx context.Context, stores TxStores, key id.ClaimKey, kind models.ReviewTaskKind) error {
	task, err := stores.ReviewTasks.FindOpen(ctx, key, kind)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review task")
	}
	if err := stores.ReviewTasks.Close(ctx, task.ID, s.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close review task")
	}
	return nil
}

func (s *Service) view(ctx context.Context, tasks ReviewTaskStore, claim *models.Claim) (*models.CompletedClaim, error) {
	out := &models.CompletedClaim{
		ClaimKey:              claim.Key,
		Status:                claim.Status,
		MatchResult:           claim.MatchResult,
		PersonID:              claim.ResolvedPersonID,
		ReferenceNumber:       claim.ReferenceNumber,
		Token:                 claim.Token,
		FurtherChecksRequired: claim.HeldForFurtherChecks,
	}
	if claim.IsCompleted() {
		return out, nil
	}
	list, err := tasks.ListByClaim(ctx, claim.Key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review tasks")
	}
	if i := slices.IndexFunc(list, (*models.ReviewTask).IsOpen); i >= 0 {
		taskID := list[i].ID
		out.ReviewTaskID = &taskID
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, claim *models.Claim, decision string) error {
	if s.auditor == nil {
		return nil
	}
	event := audit.ComplianceEvent{
		Timestamp: s.now(),
		Subject:   claim.Key.String(),
		Action:    action,
		ClientID:  claim.Key.ClientID.String(),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
	}
	if claim.ResolvedPersonID != nil {
		event.PersonID = claim.ResolvedPersonID.String()
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) track(ctx context.Context, action audit.AuditEvent, key id.ClaimKey, decision string) {
	if s.ops == nil {
		return
	}
	s.ops.Track(ctx, audit.OpsEvent{
		Timestamp: s.now(),
		Subject:   key.String(),
		Action:    action,
		ClientID:  key.ClientID.String(),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) logInfo(ctx context.Context, msg string, claim *models.Claim) {
	if s.logger == nil {
		return
	}
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"client_id", claim.Key.ClientID.String(),
		"claim_request_id", claim.Key.RequestID.String(),
	}
	if claim.ResolvedPersonID != nil {
		attrs = append(attrs, "person_id", claim.ResolvedPersonID.String())
	}
	s.logger.InfoContext(ctx, msg, attrs...)
}

func mapClaimLookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "claim not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
}

func mapPersonLookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
}
