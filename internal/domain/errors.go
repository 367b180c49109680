package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks degenerate geometry or missing trip endpoints.
	// Inputs failing validation are rejected before any sampling happens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoRoute is returned when the routing engine finds no candidate.
	ErrNoRoute = errors.New("no route found")

	// ErrStaleRequest marks work superseded by a newer request on the same trip.
	ErrStaleRequest = errors.New("stale request")
)

// CollaboratorError wraps a failure from an external service
// (routing, forecast or geocoding).
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Retryable reports whether a user retry may succeed. Every collaborator
// failure is retryable; nothing is retried automatically.
func (e *CollaboratorError) Retryable() bool { return true }
