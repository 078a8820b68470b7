package models

import "errors"

// Core error taxonomy. The engine never logs or retries; callers map
// these onto transport-level responses.
var (
	// ErrInvalidBatch: empty item list, or no auto-gradable items to
	// form an accuracy denominator. No state was mutated.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrUnknownSession: no session exists for the given id. Grading
	// never creates sessions implicitly.
	ErrUnknownSession = errors.New("unknown session")

	// ErrMalformedItem: an item is missing question, user_answer or
	// type, or carries an unrecognized type. The whole batch is
	// rejected atomically.
	ErrMalformedItem = errors.New("malformed item")
)
