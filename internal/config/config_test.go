package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/docchat/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg := Load()
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.MinSimilarity != 0.5 {
		t.Errorf("MinSimilarity = %v, want 0.5", cfg.MinSimilarity)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.Voice != models.VoiceAlloy {
		t.Errorf("Voice = %s, want alloy", cfg.Voice)
	}
	if cfg.InputModality != ModalityText {
		t.Errorf("InputModality = %s, want text", cfg.InputModality)
	}
	if cfg.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %s, want ollama", cfg.LLMProvider)
	}
	if cfg.StreamDelay != 100*time.Millisecond {
		t.Errorf("StreamDelay = %v, want 100ms", cfg.StreamDelay)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DOCCHAT_TOP_K", "7")
	t.Setenv("DOCCHAT_MIN_SIMILARITY", "0.8")
	t.Setenv("DOCCHAT_VOICE", "onyx")
	t.Setenv("DOCCHAT_INPUT", "audio")
	t.Setenv("DOCCHAT_LOG_LEVEL", "debug")
	t.Setenv("DOCCHAT_SPEECH_TIMEOUT", "30s")

	cfg := Load()
	if cfg.TopK != 7 {
		t.Errorf("TopK = %d, want 7", cfg.TopK)
	}
	if cfg.MinSimilarity != 0.8 {
		t.Errorf("MinSimilarity = %v, want 0.8", cfg.MinSimilarity)
	}
	if cfg.Voice != models.VoiceOnyx {
		t.Errorf("Voice = %s, want onyx", cfg.Voice)
	}
	if cfg.InputModality != ModalityAudio {
		t.Errorf("InputModality = %s, want audio", cfg.InputModality)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.SpeechTimeout != 30*time.Second {
		t.Errorf("SpeechTimeout = %v, want 30s", cfg.SpeechTimeout)
	}
}

func TestLoadClampsRanges(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DOCCHAT_TOP_K", "50")
	t.Setenv("DOCCHAT_MIN_SIMILARITY", "1.5")
	t.Setenv("DOCCHAT_TEMPERATURE", "-0.2")

	cfg := Load()
	if cfg.TopK != 10 {
		t.Errorf("TopK = %d, want clamped to 10", cfg.TopK)
	}
	if cfg.MinSimilarity != 1.0 {
		t.Errorf("MinSimilarity = %v, want clamped to 1.0", cfg.MinSimilarity)
	}
	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want clamped to 0", cfg.Temperature)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := chdirTemp(t)
	yaml := "top_k: 5\nchat_model: llama3\nvoice: shimmer\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg := Load()
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5 from file", cfg.TopK)
	}
	if cfg.ChatModel != "llama3" {
		t.Errorf("ChatModel = %s, want llama3 from file", cfg.ChatModel)
	}
	if cfg.Voice != models.VoiceShimmer {
		t.Errorf("Voice = %s, want shimmer from file", cfg.Voice)
	}
}

func TestEmbedProviderResolution(t *testing.T) {
	chdirTemp(t)

	cfg := Load()
	if cfg.EmbedProvider != "ollama" {
		t.Errorf("EmbedProvider = %s, want ollama (follows chat provider)", cfg.EmbedProvider)
	}

	t.Setenv("DOCCHAT_LLM_PROVIDER", "anthropic")
	cfg = Load()
	if cfg.EmbedProvider != "ollama" {
		t.Errorf("EmbedProvider = %s, want ollama fallback for anthropic chat", cfg.EmbedProvider)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Errorf("LLMProvider = %s, want anthropic", cfg.LLMProvider)
	}

	t.Setenv("DOCCHAT_EMBED_PROVIDER", "openai")
	cfg = Load()
	if cfg.EmbedProvider != "openai" {
		t.Errorf("EmbedProvider = %s, want openai from env", cfg.EmbedProvider)
	}
}

func TestValidateAudioRequiresWhisper(t *testing.T) {
	cfg := Config{InputModality: ModalityAudio}
	if err := cfg.Validate(); err == nil {
		t.Error("audio modality without whisper endpoint accepted")
	}

	cfg.WhisperEndpoint = "https://example.invalid/whisper"
	cfg.WhisperAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// chdirTemp moves the test into an empty directory so no ambient
// docchat.yaml or .env leaks into Load.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
