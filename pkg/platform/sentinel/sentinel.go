// Package sentinel holds the storage-level facts that registry, claim and
// review-task stores report. Services translate them into domain errors;
// request validation uses pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no person, claim or review task with that identity.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness constraint rejected the write, such as a
	// reused claim key or a second open task of one kind.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState: the row exists but cannot make that transition,
	// such as closing a closed review task.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the registry or synonyms table could not be reached;
	// the caller may retry.
	ErrUnavailable = errors.New("unavailable")
)
