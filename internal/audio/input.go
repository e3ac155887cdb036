// Package audio adapts the audio modality onto the text conversation
// pipeline: capture, transcription and synthesis playback.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/docchat/internal/metrics"
	"github.com/raphaelgruber/docchat/internal/speech"
)

// Transcriber converts a persisted audio resource into text segments.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) ([]string, error)
}

// Input turns a raw audio clip into a query string via the transcription
// service.
type Input struct {
	transcriber Transcriber
	collector   *metrics.Collector
}

// NewInput creates the audio input pipeline. collector may be nil.
func NewInput(transcriber Transcriber, collector *metrics.Collector) *Input {
	return &Input{transcriber: transcriber, collector: collector}
}

// Transcribe persists the clip to a temporary file, invokes the
// transcription service and returns the first non-empty segment.
// The temporary file is removed on every exit path.
func (p *Input) Transcribe(ctx context.Context, clip []byte) (string, error) {
	f, err := os.CreateTemp("", "docchat-*.wav")
	if err != nil {
		return "", fmt.Errorf("%w: create temp audio: %v", speech.ErrTranscription, err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to clean up temporary audio file", "path", path, "error", err)
		}
	}()

	if _, err := f.Write(clip); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: write temp audio: %v", speech.ErrTranscription, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close temp audio: %v", speech.ErrTranscription, err)
	}

	start := time.Now()
	segments, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	if p.collector != nil {
		p.collector.RecordTiming(metrics.OpTranscribe, time.Since(start))
	}

	for _, segment := range segments {
		if text := strings.TrimSpace(segment); text != "" {
			slog.Debug("transcription complete", "text_len", len(text))
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: no usable transcription result", speech.ErrTranscription)
}
