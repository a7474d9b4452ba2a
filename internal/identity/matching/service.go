// Package matching is the identity resolution engine: it decides whether a
// claim denotes an existing person record, might denote one or more records,
// or denotes nobody in the registry yet.
//
// Matching is a pure read and is safe to call concurrently.
package matching

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/identity/matching/metrics"
	"onboard/internal/identity/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/audit"
	"onboard/pkg/requestcontext"
)

const tracerName = "onboard/identity/matching"

// SecurityPublisher receives registry integrity violations.
type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.SecurityEvent)
}

// Service matches identity claims against the registry.
type Service struct {
	locator   *Locator
	evaluator *Evaluator
	security  SecurityPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
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

func WithSecurityPublisher(p SecurityPublisher) Option {
	return func(s *Service) {
		s.security = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(registry Registry, names NameResolver, opts ...Option) *Service {
	s := &Service{
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locator = NewLocator(registry, names, s.metrics)
	s.evaluator = NewEvaluator(names)
	return s
}

// MatchPersons classifies the claim against the registry. Odd or sparse
// claims are never errors; only registry and alias-table failures are
// returned, and those are safe to retry.
func (s *Service) MatchPersons(ctx context.Context, claim models.IdentityClaim) (models.MatchResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "matching.MatchPersons")
	defer span.End()

	candidates, err := s.locator.FindCandidates(ctx, claim)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate lookup failed")
		s.logError(ctx, "candidate lookup failed", err)
		return models.MatchResult{}, err
	}
	s.metrics.ObserveCandidates(len(candidates))

	if len(candidates) == 0 {
		result := models.NoMatch(nil)
		s.record(ctx, span, result, start)
		return result, nil
	}

	verdicts := make([]models.CandidateVerdict, 0, len(candidates))
	for _, c := range candidates {
		v, err := s.evaluator.Evaluate(ctx, claim, c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "candidate evaluation failed")
			s.logError(ctx, "candidate evaluation failed", err)
			return models.MatchResult{}, err
		}
		verdicts = append(verdicts, v)
	}

	result := Aggregate(verdicts)
	if result.HasConflict() {
		s.reportConflict(ctx, result.ConflictingPersonIDs)
	}
	s.record(ctx, span, result, start)
	return result, nil
}

func (s *Service) record(ctx context.Context, span trace.Span, result models.MatchResult, start time.Time) {
	span.SetAttributes(
		attribute.String("match.outcome", string(result.Outcome)),
		attribute.Int("match.candidates", len(result.Candidates)),
	)
	s.metrics.IncrementOutcome(string(result.Outcome))
	s.metrics.ObserveMatchLatency(time.Since(start))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity matched",
			"request_id", requestcontext.RequestID(ctx),
			"outcome", result.Outcome,
			"candidates", len(result.Candidates),
		)
	}
}

// reportConflict surfaces more than one definite candidate for a single
// claim. DOB and NINO should be unique in the registry, so this indicates
// duplicate records that need merging.
func (s *Service) reportConflict(ctx context.Context, personIDs []id.PersonID) {
	s.metrics.IncrementDefiniteConflict()

	ids := make([]string, len(personIDs))
	for i, p := range personIDs {
		ids[i] = p.String()
	}
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "multiple definite matches for one claim",
			"request_id", requestcontext.RequestID(ctx),
			"person_ids", ids,
		)
	}
	if s.security != nil {
		s.security.Emit(ctx, audit.SecurityEvent{
			Timestamp: s.now(),
			Subject:   ids[0],
			Action:    audit.EventDefiniteMatchConflict,
			Reason:    "definite rule satisfied by persons " + strings.Join(ids, ", "),
			ClientID:  requestcontext.ClientID(ctx).String(),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityCritical,
		})
	}
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
