package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventCategory decides which publisher handles an event and how long the
// outbox consumer retains it.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance" // registry changes, fail closed
	CategorySecurity   EventCategory = "security"   // integrity and access, buffered
	CategoryOperations EventCategory = "operations" // routine, sampled
)

// Event is the flattened record every store persists, whichever publisher
// produced it.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the entity acted on: a person id or a claim key.
	Subject   string
	Action    string
	ClientID  string
	PersonID  string
	Decision  string
	Reason    string
	RequestID string
	IP        string
	Severity  Severity
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventClaimSubmitted        AuditEvent = "claim_submitted"
	EventIdentityMatched       AuditEvent = "identity_matched"
	EventPersonCreated         AuditEvent = "person_created"
	EventClaimCompleted        AuditEvent = "claim_completed"
	EventReviewTaskCreated     AuditEvent = "review_task_created"
	EventFurtherChecksApproved AuditEvent = "further_checks_approved"
	EventDefiniteMatchConflict AuditEvent = "definite_match_conflict"
	EventClientAuthFailed      AuditEvent = "client_auth_failed"
	EventAliasesReloaded       AuditEvent = "aliases_reloaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPersonCreated:         CategoryCompliance,
	EventClaimCompleted:        CategoryCompliance,
	EventReviewTaskCreated:     CategoryCompliance,
	EventFurtherChecksApproved: CategoryCompliance,

	EventDefiniteMatchConflict: CategorySecurity,
	EventClientAuthFailed:      CategorySecurity,
	EventAliasesReloaded:       CategorySecurity,

	EventClaimSubmitted:  CategoryOperations,
	EventIdentityMatched: CategoryOperations,
}

// Category falls back to operations for actions missing from the table.
func (e AuditEvent) Category() EventCategory {
	cat, ok := eventCategories[e]
	if !ok {
		return CategoryOperations
	}
	return cat
}

// ComplianceEvent records a registry change. The write happens in the same
// transaction as the change itself.
type ComplianceEvent struct {
	Timestamp time.Time
	Subject   string // claim key or person id (required)
	Action    AuditEvent
	ClientID  string
	PersonID  string
	Decision  string
	RequestID string
}

func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// Validate reports the first missing required field.
func (e ComplianceEvent) Validate() error {
	switch {
	case e.Subject == "":
		return errors.New("compliance event: subject is required")
	case e.Action == "":
		return errors.New("compliance event: action is required")
	case e.Action.Category() != CategoryCompliance:
		return fmt.Errorf("compliance event: %q is not a compliance action", e.Action)
	}
	return nil
}

func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    string(e.Action),
		ClientID:  e.ClientID,
		PersonID:  e.PersonID,
		Decision:  e.Decision,
		RequestID: e.RequestID,
	}
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SecurityEvent is emitted without blocking the caller. Critical events
// survive backlog pressure longest.
type SecurityEvent struct {
	Timestamp time.Time
	Subject   string
	Action    AuditEvent
	Reason    string
	ClientID  string
	IP        string
	RequestID string
	Severity  Severity
}

func (e SecurityEvent) Category() EventCategory { return CategorySecurity }

func (e SecurityEvent) ToEvent() Event {
	return Event{
		Category:  CategorySecurity,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    string(e.Action),
		Reason:    e.Reason,
		ClientID:  e.ClientID,
		IP:        e.IP,
		RequestID: e.RequestID,
		Severity:  e.Severity,
	}
}

// OpsEvent is subject to sampling.
type OpsEvent struct {
	Timestamp time.Time
	Subject   string
	Action    AuditEvent
	ClientID  string
	Decision  string
	RequestID string
}

func (e OpsEvent) Category() EventCategory { return CategoryOperations }

func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    string(e.Action),
		ClientID:  e.ClientID,
		Decision:  e.Decision,
		RequestID: e.RequestID,
	}
}
