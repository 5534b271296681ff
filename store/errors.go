package store

import "errors"

// Common store errors.
var (
	// ErrNotFound is returned when an entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write carries a stale revision, meaning
	// the entity changed since it was last fetched. Callers resolve it by
	// refetching, never by retrying the same write blindly.
	ErrConflict = errors.New("entity revision conflict")
)
