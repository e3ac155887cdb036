// Package llm provides embedding and chat model gateways using langchaingo.
//
// Gateways are constructed once at process start and injected by reference
// into the components that need them; there is no hidden global state.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider identifies an LLM/embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config holds provider settings shared by the embedder and chat model.
type Config struct {
	// Provider selects the chat model backend.
	Provider Provider

	// EmbedProvider selects the embedding backend separately from the
	// chat provider; anthropic has no embeddings API, so an anthropic
	// chat model pairs with an ollama or openai embedder. Empty means
	// same as Provider.
	EmbedProvider Provider

	// EmbedModel is the embedding model name (provider-specific),
	// e.g. "nomic-embed-text" for Ollama.
	EmbedModel string

	// EmbedDimension is the required embedding dimension; vectors of any
	// other length are rejected.
	EmbedDimension int

	// ChatModel is the generative model name, e.g. "deepseek-r1:32b".
	ChatModel string

	// OllamaHost is the Ollama server URL (ollama provider only).
	OllamaHost string

	// API keys for hosted providers.
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// Embedder turns text into fixed-dimension embedding vectors.
type Embedder struct {
	model     embeddings.Embedder
	dimension int
	modelName string
}

// NewEmbedder creates an embedder for the configured embedding provider,
// falling back to the chat provider when none is set.
func NewEmbedder(cfg Config) (*Embedder, error) {
	var model embeddings.Embedder
	var err error

	provider := cfg.EmbedProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case ProviderOllama, "":
		client, ollamaErr := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if ollamaErr != nil {
			return nil, fmt.Errorf("create ollama client: %w", ollamaErr)
		}
		model, err = embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		client, openaiErr := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if openaiErr != nil {
			return nil, fmt.Errorf("create openai client: %w", openaiErr)
		}
		model, err = embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}

	return &Embedder{
		model:     model,
		dimension: cfg.EmbedDimension,
		modelName: cfg.EmbedModel,
	}, nil
}

// Embed generates an embedding vector for text.
// Failures are wrapped in ErrEncoding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vectors, err := e.model.EmbedDocuments(ctx, []string{text})
	duration := time.Since(start)

	if err != nil {
		slog.Warn("embedding failed", "model", e.modelName, "text_len", len(text), "duration_ms", duration.Milliseconds(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEncoding)
	}

	embedding := vectors[0]
	if e.dimension > 0 && len(embedding) != e.dimension {
		return nil, fmt.Errorf("%w: dimension mismatch: got %d, want %d", ErrEncoding, len(embedding), e.dimension)
	}

	slog.Debug("embedding complete", "model", e.modelName, "text_len", len(text), "duration_ms", duration.Milliseconds())
	return embedding, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}

// Dimension returns the expected embedding dimension (0 when unchecked).
func (e *Embedder) Dimension() int {
	return e.dimension
}
