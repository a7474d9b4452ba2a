package matching

import (
	"slices"

	"onboard/internal/identity/models"
	id "onboard/pkg/domain"
)

// Aggregate folds per-candidate verdicts, given in registry order, into the
// claim's outcome:
//   - any definite candidate: DefiniteMatch on the first one, with every
//     definite candidate listed in ConflictingPersonIDs when there is more
//     than one
//   - otherwise any potential candidate: PotentialMatches listing each once
//   - otherwise NoMatches
//
// This is pure domain logic - no I/O, no side effects.
func Aggregate(verdicts []models.CandidateVerdict) models.MatchResult {
	var definite, potential []id.PersonID
	for _, v := range verdicts {
		switch v.Verdict {
		case models.VerdictDefinite:
			definite = appendUnique(definite, v.PersonID)
		case models.VerdictPotential:
			potential = appendUnique(potential, v.PersonID)
		}
	}

	switch {
	case len(definite) > 0:
		result := models.DefiniteMatch(definite[0], verdicts)
		if len(definite) > 1 {
			result.ConflictingPersonIDs = definite
		}
		return result
	case len(potential) > 0:
		return models.PotentialMatches(potential, verdicts)
	default:
		return models.NoMatch(verdicts)
	}
}

func appendUnique(ids []id.PersonID, personID id.PersonID) []id.PersonID {
	if slices.Contains(ids, personID) {
		return ids
	}
	return append(ids, personID)
}
