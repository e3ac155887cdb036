package speech

import "errors"

// Sentinel errors for speech service operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTranscription indicates speech-to-text returned no usable result
	// or was unreachable. Local to the audio path: the caller asks the
	// user to retry input instead of aborting the conversation.
	ErrTranscription = errors.New("transcription failed")

	// ErrSynthesis indicates text-to-speech failed. Never fatal: the text
	// response has already been delivered when synthesis is attempted.
	ErrSynthesis = errors.New("speech synthesis failed")
)
