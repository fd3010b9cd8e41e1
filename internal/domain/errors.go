package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product ID is unknown to the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidEntryType is returned when an append carries an unknown entry
	// type. Validation happens before any state mutation.
	ErrInvalidEntryType = errors.New("invalid entry type")

	// ErrAppendConflict indicates a concurrent append raced on the same
	// product. It is transient and retried inside the engine.
	ErrAppendConflict = errors.New("concurrent append conflict")

	// ErrAppendFailed is surfaced after the conflict retry budget is exhausted.
	ErrAppendFailed = errors.New("append failed after retries")
)
