package llm

import (
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/raphaelgruber/docchat/internal/models"
)

func TestChatMessageType(t *testing.T) {
	tests := []struct {
		role models.Role
		want llms.ChatMessageType
	}{
		{models.RoleSystem, llms.ChatMessageTypeSystem},
		{models.RoleAssistant, llms.ChatMessageTypeAI},
		{models.RoleHuman, llms.ChatMessageTypeHuman},
		{models.Role("unknown"), llms.ChatMessageTypeHuman},
	}
	for _, tt := range tests {
		if got := chatMessageType(tt.role); got != tt.want {
			t.Errorf("chatMessageType(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestNewModelUnsupportedProvider(t *testing.T) {
	_, err := NewModel(Config{Provider: "bedrock"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("NewModel with unknown provider: %v", err)
	}
}

func TestNewModelRequiresAPIKeys(t *testing.T) {
	if _, err := NewModel(Config{Provider: ProviderOpenAI}); err == nil {
		t.Error("openai model without API key accepted")
	}
	if _, err := NewModel(Config{Provider: ProviderAnthropic}); err == nil {
		t.Error("anthropic model without API key accepted")
	}
}

func TestNewEmbedderUnsupportedProvider(t *testing.T) {
	if _, err := NewEmbedder(Config{Provider: ProviderAnthropic}); err == nil {
		t.Error("anthropic embedder accepted; no embedding API exists for it")
	}
	if _, err := NewEmbedder(Config{Provider: ProviderOpenAI}); err == nil {
		t.Error("openai embedder without API key accepted")
	}
}

func TestNewEmbedderSeparateProvider(t *testing.T) {
	// An anthropic chat model pairs with an ollama embedder.
	e, err := NewEmbedder(Config{
		Provider:      ProviderAnthropic,
		EmbedProvider: ProviderOllama,
		EmbedModel:    "nomic-embed-text",
		OllamaHost:    "http://localhost:11434",
	})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	if e.Model() != "nomic-embed-text" {
		t.Errorf("Model() = %q, want nomic-embed-text", e.Model())
	}
}
