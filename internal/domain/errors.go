package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or unusable user query. Surfaced to the user.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoActiveSession signals a follow-up question before any search ran. Surfaced to the user.
	ErrNoActiveSession = errors.New("no active session")
	// ErrProviderUnavailable signals an external provider call that exhausted its retry budget.
	// Absorbed by fallback paths, never fatal for a well-formed query.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedResponse signals AI output that failed shape or grounding validation.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrSuperseded signals a pipeline run cancelled by a newer query.
	ErrSuperseded = errors.New("superseded by a newer query")
)
