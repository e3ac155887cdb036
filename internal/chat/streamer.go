package chat

import (
	"strings"
	"time"
)

// DefaultStreamDelay is the pause between revealed sentences.
const DefaultStreamDelay = 100 * time.Millisecond

// Streamer renders a completed response incrementally to simulate
// progressive generation, even though the completion already arrived whole.
type Streamer struct {
	delay time.Duration
}

// NewStreamer creates a streamer. A delay of 0 uses DefaultStreamDelay;
// pass a negative delay for no pause (tests).
func NewStreamer(delay time.Duration) *Streamer {
	if delay == 0 {
		delay = DefaultStreamDelay
	}
	return &Streamer{delay: delay}
}

// Stream reveals text sentence by sentence, calling emit with each
// increment. The concatenation of all increments equals text exactly;
// when splitting yields nothing usable the full text is emitted at once
// so content is never lost.
func (s *Streamer) Stream(text string, emit func(chunk string)) string {
	if text == "" {
		return ""
	}

	fragments := strings.SplitAfter(text, ". ")
	var revealed strings.Builder
	first := true
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		if !first && s.delay > 0 {
			time.Sleep(s.delay)
		}
		first = false
		revealed.WriteString(fragment)
		emit(fragment)
	}

	if revealed.Len() == 0 {
		emit(text)
		return text
	}
	return revealed.String()
}
