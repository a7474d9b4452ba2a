// Package requestcontext carries request-scoped values that services need
// without depending on net/http: the calling API client, the correlation
// ID, and the instant the request was received.
package requestcontext

import (
	"context"
	"time"

	id "onboard/pkg/domain"
)

type key int

const (
	clientKey key = iota
	correlationKey
	receivedAtKey
)

// ClientID is the authenticated API client, or "" outside an authenticated
// request.
func ClientID(ctx context.Context) id.ClientID {
	v, _ := ctx.Value(clientKey).(id.ClientID)
	return v
}

func WithClientID(ctx context.Context, clientID id.ClientID) context.Context {
	return context.WithValue(ctx, clientKey, clientID)
}

// RequestID is the HTTP correlation ID. It is unrelated to the client's
// claim request_id.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(correlationKey).(string)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, correlationKey, requestID)
}

// Now returns the pinned request time so every timestamp written for one
// request agrees. Background work without a pinned time gets the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(receivedAtKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, receivedAtKey, t)
}
