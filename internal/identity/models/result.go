package models

import (
	id "onboard/pkg/domain"
)

// MatchOutcome is the request-level classification of a claim.
type MatchOutcome string

const (
	OutcomeDefiniteMatch    MatchOutcome = "definite_match"
	OutcomePotentialMatches MatchOutcome = "potential_matches"
	OutcomeNoMatches        MatchOutcome = "no_matches"
)

// Verdict is the per-candidate classification.
type Verdict string

const (
	VerdictDefinite  Verdict = "definite"
	VerdictPotential Verdict = "potential"
	VerdictNone      Verdict = "none"
)

// CandidateVerdict records why one candidate was classified as it was.
type CandidateVerdict struct {
	PersonID id.PersonID  `json:"person_id"`
	Matched  AttributeSet `json:"matched"`
	Verdict  Verdict      `json:"verdict"`
	Rule     string       `json:"rule,omitempty"`
}

// MatchResult is computed fresh for each claim and never mutated.
//
// Invariants:
//   - PersonID is set only for OutcomeDefiniteMatch
//   - PotentialMatchesPersonIDs is non-empty only for OutcomePotentialMatches
//   - ConflictingPersonIDs lists every definite candidate when more than one
//     satisfied a definite rule (an invariant violation in the registry data)
type MatchResult struct {
	Outcome                   MatchOutcome       `json:"outcome"`
	PersonID                  id.PersonID        `json:"person_id,omitzero"`
	PotentialMatchesPersonIDs []id.PersonID      `json:"potential_matches_person_ids,omitempty"`
	ConflictingPersonIDs      []id.PersonID      `json:"conflicting_person_ids,omitempty"`
	Candidates                []CandidateVerdict `json:"candidates,omitempty"`
}

// NoMatch is the result when nothing in the registry resembles the claim.
func NoMatch(candidates []CandidateVerdict) MatchResult {
	return MatchResult{Outcome: OutcomeNoMatches, Candidates: candidates}
}

// DefiniteMatch resolves the claim to a single record.
func DefiniteMatch(personID id.PersonID, candidates []CandidateVerdict) MatchResult {
	return MatchResult{Outcome: OutcomeDefiniteMatch, PersonID: personID, Candidates: candidates}
}

// PotentialMatches routes the claim to manual adjudication.
func PotentialMatches(personIDs []id.PersonID, candidates []CandidateVerdict) MatchResult {
	return MatchResult{Outcome: OutcomePotentialMatches, PotentialMatchesPersonIDs: personIDs, Candidates: candidates}
}

// HasConflict reports whether more than one candidate was definite.
func (r MatchResult) HasConflict() bool {
	return len(r.ConflictingPersonIDs) > 1
}
