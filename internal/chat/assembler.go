package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/docchat/internal/models"
)

// systemPrompt embeds the retrieved context into the instruction message.
const systemPrompt = `You are a helpful and friendly assistant.
Use the following context to answer questions thoroughly yet concisely.
If you're not sure about something, be honest about it.

Context: %s`

// Searcher ranks stored passages against a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.ScoredPassage, error)
}

// Assembler turns a query plus conversation history into a bounded prompt.
type Assembler struct {
	engine Searcher

	// maxHistoryTurns caps how many prior turns enter the prompt,
	// newest kept. 0 means unbounded.
	maxHistoryTurns int
}

// NewAssembler creates a context assembler. maxHistoryTurns of 0 leaves
// history unbounded.
func NewAssembler(engine Searcher, maxHistoryTurns int) *Assembler {
	return &Assembler{engine: engine, maxHistoryTurns: maxHistoryTurns}
}

// Assemble retrieves context for the query and builds the prompt message
// sequence: one instruction message carrying the context, every prior turn
// in chronological order, then the query as the final human message.
//
// Passages scoring below minSimilarity are dropped; when that empties the
// list the prompt is built with no context rather than failing. Message
// ordering is deterministic.
func (a *Assembler) Assemble(ctx context.Context, query string, history []models.Turn, topK int, minSimilarity float64) ([]models.Message, []models.ScoredPassage, error) {
	retrieved, err := a.engine.Search(ctx, query, topK)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve context: %w", err)
	}

	kept := retrieved[:0:len(retrieved)]
	for _, p := range retrieved {
		if p.Score >= minSimilarity {
			kept = append(kept, p)
		}
	}
	if len(kept) < len(retrieved) {
		slog.Debug("dropped passages below similarity threshold",
			"retrieved", len(retrieved), "kept", len(kept), "min_similarity", minSimilarity)
	}

	contents := make([]string, len(kept))
	for i, p := range kept {
		contents[i] = p.Content
	}
	contextStr := strings.Join(contents, "\n\n")

	if a.maxHistoryTurns > 0 && len(history) > a.maxHistoryTurns {
		history = history[len(history)-a.maxHistoryTurns:]
	}

	msgs := make([]models.Message, 0, len(history)+2)
	msgs = append(msgs, models.Message{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(systemPrompt, contextStr),
	})
	for _, turn := range history {
		role := models.RoleHuman
		if turn.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		msgs = append(msgs, models.Message{Role: role, Content: turn.Content})
	}
	msgs = append(msgs, models.Message{Role: models.RoleHuman, Content: query})

	return msgs, kept, nil
}
