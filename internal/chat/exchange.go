package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/docchat/internal/metrics"
	"github.com/raphaelgruber/docchat/internal/models"
)

// Completer generates a completion from an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, msgs []models.Message, temperature float64) (string, error)
}

// Options are the per-exchange knobs surfaced to the user.
type Options struct {
	TopK          int     // 1..10
	MinSimilarity float64 // 0.0..1.0
	Temperature   float64 // 0.0..1.0
}

// DefaultOptions mirror the application defaults.
func DefaultOptions() Options {
	return Options{TopK: 3, MinSimilarity: 0.5, Temperature: 0.7}
}

// Pipeline runs one exchange end to end: submit, retrieve, assemble,
// generate, append. Strictly sequential; no overlap between the retrieval
// and generation phases.
type Pipeline struct {
	assembler *Assembler
	model     Completer
	collector *metrics.Collector
}

// NewPipeline creates an exchange pipeline. collector may be nil.
func NewPipeline(assembler *Assembler, model Completer, collector *metrics.Collector) *Pipeline {
	return &Pipeline{assembler: assembler, model: model, collector: collector}
}

// Exchange submits the query to the session, assembles the prompt and
// generates the reply. On any failure the session rolls back to idle with
// its history exactly as before the call; on success exactly one human and
// one assistant turn are appended.
func (p *Pipeline) Exchange(ctx context.Context, session *Session, query string, opts Options) (reply string, retrieved []models.ScoredPassage, err error) {
	if err := session.Submit(query); err != nil {
		return "", nil, err
	}
	defer func() {
		if err != nil {
			session.Fail()
		}
	}()

	msgs, retrieved, err := p.assembler.Assemble(ctx, query, session.History(), opts.TopK, opts.MinSimilarity)
	if err != nil {
		return "", nil, err
	}
	if err := session.ContextReady(); err != nil {
		return "", nil, err
	}

	start := time.Now()
	reply, err = p.model.Complete(ctx, msgs, opts.Temperature)
	if err != nil {
		return "", nil, fmt.Errorf("generate reply: %w", err)
	}
	if p.collector != nil {
		p.collector.RecordTiming(metrics.OpGenerate, time.Since(start))
	}

	if err := session.CompletionReady(reply); err != nil {
		return "", nil, err
	}

	slog.Debug("exchange complete", "session", session.ID(), "retrieved", len(retrieved), "reply_len", len(reply))
	return reply, retrieved, nil
}
