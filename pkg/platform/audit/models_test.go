package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventPersonCreated.Category())
	assert.Equal(t, CategoryCompliance, EventClaimCompleted.Category())
	assert.Equal(t, CategorySecurity, EventDefiniteMatchConflict.Category())
	assert.Equal(t, CategoryOperations, EventIdentityMatched.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}

func TestSecurityEventToEvent(t *testing.T) {
	ev := SecurityEvent{
		Subject:  "apply-for-qts/req-1",
		Action:   EventDefiniteMatchConflict,
		Reason:   "2 definite candidates",
		Severity: SeverityCritical,
	}.ToEvent()

	assert.Equal(t, CategorySecurity, ev.Category)
	assert.Equal(t, "definite_match_conflict", ev.Action)
	assert.Equal(t, SeverityCritical, ev.Severity)
}
