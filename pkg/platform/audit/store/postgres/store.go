// Package postgres stores audit events as outbox rows. The insert joins the
// caller's transaction when ctx carries one, and the outbox relay publishes
// committed rows to Kafka.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "onboard/pkg/platform/audit"
	txcontext "onboard/pkg/platform/tx"
)

const insertOutbox = `
	INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Payload is the message body consumers read from the audit topic.
type Payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	ClientID  string `json:"client_id,omitempty"`
	PersonID  string `json:"person_id,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Severity  string `json:"severity,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	eventID := uuid.New()

	body, err := json.Marshal(payloadFor(eventID, event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType, aggregateID := aggregateOf(event)
	if _, err := txcontext.Use(ctx, s.db).ExecContext(ctx, insertOutbox,
		eventID, aggregateType, aggregateID, event.Action, body, event.Timestamp,
	); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// payloadFor derives the category from the action so a caller cannot file
// a compliance action under a sampled category.
func payloadFor(eventID uuid.UUID, event audit.Event) Payload {
	return Payload{
		ID:        eventID.String(),
		Category:  string(audit.AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		ClientID:  event.ClientID,
		PersonID:  event.PersonID,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		IP:        event.IP,
		Severity:  string(event.Severity),
	}
}

// aggregateOf keys outbox rows by person once one is known, so consumers
// partitioning by aggregate see a person's history in order.
func aggregateOf(event audit.Event) (string, string) {
	if event.PersonID != "" {
		return "person", event.PersonID
	}
	return "claim", event.Subject
}
