// Package ratelimit bounds how many requests each API client may make in a
// sliding window. Limits are enforced per client id after authentication.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set when the request was refused.
	RetryAfter time.Duration
}

// Store records requests against a key and reports whether the next one fits.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
