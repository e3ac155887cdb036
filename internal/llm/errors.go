package llm

import "errors"

// Sentinel errors for model gateway operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEncoding indicates the embedding service was unreachable or
	// returned malformed output.
	ErrEncoding = errors.New("embedding failed")

	// ErrGeneration indicates the chat model service failed to produce
	// a completion.
	ErrGeneration = errors.New("generation failed")
)
