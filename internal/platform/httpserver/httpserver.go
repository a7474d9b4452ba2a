// Package httpserver builds the listener for the onboarding API.
package httpserver

import (
	"net/http"
	"time"
)

const (
	headerTimeout = 5 * time.Second
	// Claim bodies are small; a slow body is a stuck client.
	bodyTimeout = 15 * time.Second
	// Covers a submission that matches, creates a person and writes the
	// outbox in one transaction.
	responseTimeout = 30 * time.Second
	keepAlive       = time.Minute
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       bodyTimeout,
		WriteTimeout:      responseTimeout,
		IdleTimeout:       keepAlive,
	}
}
