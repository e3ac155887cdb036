package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/docchat/internal/models"
)

// Model wraps a langchaingo chat model for completion requests.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates a chat model for the configured provider.
func NewModel(cfg Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case ProviderOllama, "":
		model, err = ollama.New(
			ollama.WithModel(cfg.ChatModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.ChatModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.ChatModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.ChatModel,
	}, nil
}

// Complete sends an ordered message sequence to the chat model and returns
// the completion content. Failures are wrapped in ErrGeneration.
func (m *Model) Complete(ctx context.Context, msgs []models.Message, temperature float64) (string, error) {
	content := make([]llms.MessageContent, 0, len(msgs))
	for _, msg := range msgs {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	duration := time.Since(start)

	if err != nil {
		slog.Warn("completion failed", "model", m.modelName, "messages", len(msgs), "duration_ms", duration.Milliseconds(), "error", err)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", ErrGeneration)
	}

	slog.Debug("completion received", "model", m.modelName, "messages", len(msgs), "duration_ms", duration.Milliseconds())
	return response.Choices[0].Content, nil
}

// Model returns the chat model name.
func (m *Model) Model() string {
	return m.modelName
}

func chatMessageType(role models.Role) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
