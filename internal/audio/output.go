package audio

import (
	"context"
	"log/slog"
	"time"

	"github.com/raphaelgruber/docchat/internal/metrics"
	"github.com/raphaelgruber/docchat/internal/models"
)

// Synthesizer converts response text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice models.Voice) ([]byte, error)
}

// Output turns response text into audio. Synthesis failure is never fatal
// to the exchange: the text response has already been delivered when
// synthesis is attempted.
type Output struct {
	synth     Synthesizer
	collector *metrics.Collector
}

// NewOutput creates the audio output pipeline. collector may be nil.
func NewOutput(synth Synthesizer, collector *metrics.Collector) *Output {
	return &Output{synth: synth, collector: collector}
}

// Speak synthesizes speech for the given text. On provider failure the
// error is logged and nil is returned so the caller degrades to text-only
// delivery.
func (o *Output) Speak(ctx context.Context, text string, voice models.Voice) []byte {
	start := time.Now()
	clip, err := o.synth.Synthesize(ctx, text, voice)
	if err != nil {
		slog.Error("speech synthesis unavailable, continuing text-only", "voice", voice, "error", err)
		return nil
	}
	if o.collector != nil {
		o.collector.RecordTiming(metrics.OpSynthesize, time.Since(start))
	}
	slog.Debug("synthesized response audio", "voice", voice, "bytes", len(clip))
	return clip
}
