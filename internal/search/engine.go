// Package search implements brute-force vector similarity search over the
// embedding store.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/raphaelgruber/docchat/internal/metrics"
	"github.com/raphaelgruber/docchat/internal/models"
	"github.com/raphaelgruber/docchat/internal/store"
)

// Encoder turns a query into an embedding vector.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PassageLoader reads the full corpus of stored passages.
type PassageLoader interface {
	LoadPassages(ctx context.Context) ([]models.StoredPassage, error)
}

// Engine ranks stored passages against a query by cosine similarity.
//
// Every call loads the full corpus and scans it: no incremental indexing,
// freshness over efficiency. Cost is O(N*D) per query, acceptable while
// the corpus is small. An approximate nearest-neighbor index can replace
// the scan behind the same Search contract once that stops holding.
type Engine struct {
	encoder   Encoder
	loader    PassageLoader
	collector *metrics.Collector
}

// NewEngine creates a search engine. collector may be nil.
func NewEngine(encoder Encoder, loader PassageLoader, collector *metrics.Collector) *Engine {
	return &Engine{encoder: encoder, loader: loader, collector: collector}
}

// Search encodes the query, ranks every stored passage by cosine similarity
// and returns the topK best matches, sorted descending by score with ties
// kept in retrieval order. An empty corpus yields an empty result, not an
// error: callers treat it as "no context available".
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]models.ScoredPassage, error) {
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be >= 1, got %d", topK)
	}

	embedStart := time.Now()
	queryVector, err := e.encoder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	e.record(metrics.OpEmbed, time.Since(embedStart))

	loadStart := time.Now()
	passages, err := e.loader.LoadPassages(ctx)
	if err != nil {
		if errors.Is(err, store.ErrEmptyCorpus) {
			slog.Debug("corpus is empty, returning no matches")
			return []models.ScoredPassage{}, nil
		}
		return nil, err
	}
	e.record(metrics.OpLoad, time.Since(loadStart))

	rankStart := time.Now()
	scored := make([]models.ScoredPassage, len(passages))
	for i, p := range passages {
		scored[i] = models.ScoredPassage{
			Score:   Cosine(queryVector, p.Vector),
			Content: p.Content,
		}
	}

	// Stable sort keeps equal scores in retrieval order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	e.record(metrics.OpSearch, time.Since(rankStart))

	slog.Debug("search complete", "corpus_size", len(passages), "top_k", topK, "returned", len(scored))
	return scored, nil
}

func (e *Engine) record(op string, d time.Duration) {
	if e.collector != nil {
		e.collector.RecordTiming(op, d)
	}
}
