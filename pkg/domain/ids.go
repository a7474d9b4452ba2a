// Package domain holds the typed identifiers shared across modules.
//
// IDs are distinct named types over uuid.UUID so a PersonID can never be
// passed where a ReviewTaskID is expected. Construct them with the Parse
// functions at trust boundaries; New* helpers are for server-side allocation.
package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "onboard/pkg/domain-errors"
)

// PersonID identifies a PersonRecord in the registry.
type PersonID uuid.UUID

// ClaimID identifies a stored identity claim.
type ClaimID uuid.UUID

// ReviewTaskID identifies a manual-review work item.
type ReviewTaskID uuid.UUID

func NewPersonID() PersonID         { return PersonID(uuid.New()) }
func NewClaimID() ClaimID           { return ClaimID(uuid.New()) }
func NewReviewTaskID() ReviewTaskID { return ReviewTaskID(uuid.New()) }

func (id PersonID) String() string     { return uuid.UUID(id).String() }
func (id ClaimID) String() string      { return uuid.UUID(id).String() }
func (id ReviewTaskID) String() string { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ReviewTaskID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id PersonID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *PersonID) UnmarshalText(b []byte) error {
	parsed, err := ParsePersonID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ReviewTaskID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ReviewTaskID) UnmarshalText(b []byte) error {
	parsed, err := ParseReviewTaskID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person_id")
	return PersonID(u), err
}

func ParseClaimID(s string) (ClaimID, error) {
	u, err := parseUUID(s, "claim_id")
	return ClaimID(u), err
}

func ParseReviewTaskID(s string) (ReviewTaskID, error) {
	u, err := parseUUID(s, "review_task_id")
	return ReviewTaskID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

// ClientID names an API client (a registered onboarding channel). Client IDs
// are configured, not allocated, so they are slugs rather than UUIDs.
type ClientID string

const maxClientIDLength = 64

var clientIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func ParseClientID(s string) (ClientID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "client_id cannot be empty")
	}
	if len(s) > maxClientIDLength || !clientIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid client_id")
	}
	return ClientID(s), nil
}

func (c ClientID) String() string { return string(c) }
func (c ClientID) IsNil() bool    { return c == "" }

// RequestID is the caller-chosen idempotency key of a claim, unique per client.
type RequestID string

const maxRequestIDLength = 100

func ParseRequestID(s string) (RequestID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "request_id cannot be empty")
	}
	if len(s) > maxRequestIDLength || !utf8.ValidString(s) || strings.ContainsAny(s, "\x00/") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid request_id")
	}
	return RequestID(s), nil
}

func (r RequestID) String() string { return string(r) }

// ClaimKey is the idempotency key for claim resolution.
type ClaimKey struct {
	ClientID  ClientID
	RequestID RequestID
}

func (k ClaimKey) String() string {
	return k.ClientID.String() + "/" + k.RequestID.String()
}
