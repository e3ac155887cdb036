package store

import "errors"

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnavailable indicates the backing store could not be read.
	// Retrieval aborts the current exchange when this occurs.
	ErrUnavailable = errors.New("embedding store unavailable")

	// ErrEmptyCorpus indicates no passages are stored. Callers must treat
	// this as "no context available", not as a fatal failure.
	ErrEmptyCorpus = errors.New("no passages stored")

	// ErrMalformedVector indicates a stored embedding could not be parsed
	// into a numeric vector.
	ErrMalformedVector = errors.New("malformed embedding vector")
)
