package tickets

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrTicketNotFound indicates the ticket id is unknown.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidTransition indicates an illegal state edge. The caller
	// must re-fetch the current state before retrying with a new target.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConcurrentModification indicates the conditional write lost a
	// race with another writer. The whole operation is safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrNoImage indicates the ticket has no attached image.
	ErrNoImage = errors.New("ticket has no image")
)

// ValidationError reports malformed or missing input. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// StorageError wraps a backend failure that survived the retry policy.
// The request fails but remains safely retryable by the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
