// Package config loads application configuration from the environment,
// with optional overrides from a docchat.yaml file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/docchat/internal/models"
)

// Modality selects the input channel of an exchange.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// Config holds all configuration values.
type Config struct {
	// Embedding store (read-only)
	DatabaseURL string

	// Model providers. EmbedProvider may differ from LLMProvider because
	// not every chat backend offers embeddings.
	LLMProvider     string
	EmbedProvider   string
	OllamaHost      string
	EmbedModel      string
	EmbedDimension  int
	ChatModel       string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Speech services
	WhisperEndpoint   string
	WhisperAPIKey     string
	WhisperAPIVersion string
	TTSEndpoint       string
	TTSAPIKey         string
	TTSAPIVersion     string
	SpeechTimeout     time.Duration

	// Conversation knobs
	TopK            int     // 1..10
	MinSimilarity   float64 // 0.0..1.0
	Temperature     float64 // 0.0..1.0
	Voice           models.Voice
	InputModality   Modality
	MaxHistoryTurns int // 0 = unbounded
	StreamDelay     time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the yaml override file. Only set fields override.
type fileConfig struct {
	DatabaseURL     string   `yaml:"database_url"`
	LLMProvider     string   `yaml:"llm_provider"`
	EmbedProvider   string   `yaml:"embed_provider"`
	OllamaHost      string   `yaml:"ollama_host"`
	EmbedModel      string   `yaml:"embed_model"`
	EmbedDimension  int      `yaml:"embed_dimension"`
	ChatModel       string   `yaml:"chat_model"`
	WhisperEndpoint string   `yaml:"whisper_endpoint"`
	TTSEndpoint     string   `yaml:"tts_endpoint"`
	TopK            *int     `yaml:"top_k"`
	MinSimilarity   *float64 `yaml:"min_similarity"`
	Temperature     *float64 `yaml:"temperature"`
	Voice           string   `yaml:"voice"`
	InputModality   string   `yaml:"input"`
	MaxHistoryTurns *int     `yaml:"max_history_turns"`
}

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "docchat.yaml"

// Load reads configuration: defaults, then the optional yaml file, then
// environment variables (a .env file is honoured when present).
func Load() Config {
	// Populate the environment from .env when available.
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: getEnv("DOCCHAT_DATABASE_URL", "postgres://localhost:5432/docchat"),

		LLMProvider:     getEnv("DOCCHAT_LLM_PROVIDER", "ollama"),
		EmbedProvider:   os.Getenv("DOCCHAT_EMBED_PROVIDER"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:      getEnv("DOCCHAT_EMBED_MODEL", "nomic-embed-text"),
		EmbedDimension:  getEnvInt("DOCCHAT_EMBED_DIMENSION", 768),
		ChatModel:       getEnv("DOCCHAT_CHAT_MODEL", "deepseek-r1:32b"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		WhisperEndpoint:   os.Getenv("DOCCHAT_WHISPER_ENDPOINT"),
		WhisperAPIKey:     os.Getenv("DOCCHAT_WHISPER_API_KEY"),
		WhisperAPIVersion: getEnv("DOCCHAT_WHISPER_API_VERSION", "2024-06-01"),
		TTSEndpoint:       os.Getenv("DOCCHAT_TTS_ENDPOINT"),
		TTSAPIKey:         os.Getenv("DOCCHAT_TTS_API_KEY"),
		TTSAPIVersion:     getEnv("DOCCHAT_TTS_API_VERSION", "2024-05-01-preview"),
		SpeechTimeout:     getEnvDuration("DOCCHAT_SPEECH_TIMEOUT", 60*time.Second),

		TopK:            getEnvInt("DOCCHAT_TOP_K", 3),
		MinSimilarity:   getEnvFloat("DOCCHAT_MIN_SIMILARITY", 0.5),
		Temperature:     getEnvFloat("DOCCHAT_TEMPERATURE", 0.7),
		Voice:           models.VoiceAlloy,
		InputModality:   ModalityText,
		MaxHistoryTurns: getEnvInt("DOCCHAT_MAX_HISTORY_TURNS", 0),
		StreamDelay:     getEnvDuration("DOCCHAT_STREAM_DELAY", 100*time.Millisecond),

		LogFile:  getEnv("DOCCHAT_LOG_FILE", "/tmp/docchat.log"),
		LogLevel: parseLogLevel(getEnv("DOCCHAT_LOG_LEVEL", "INFO")),
	}

	applyFile(&cfg, DefaultConfigFile)

	if v, err := models.ParseVoice(getEnv("DOCCHAT_VOICE", string(cfg.Voice))); err == nil {
		cfg.Voice = v
	}
	if m := getEnv("DOCCHAT_INPUT", string(cfg.InputModality)); m == string(ModalityAudio) {
		cfg.InputModality = ModalityAudio
	}

	// The embedding provider follows the chat provider unless set, except
	// anthropic, which has no embeddings API.
	if cfg.EmbedProvider == "" {
		if cfg.LLMProvider == "anthropic" {
			cfg.EmbedProvider = "ollama"
		} else {
			cfg.EmbedProvider = cfg.LLMProvider
		}
	}

	cfg.clamp()
	return cfg
}

// applyFile merges overrides from the yaml file at path, when it exists.
func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("ignoring unreadable config file", "path", path, "error", err)
		return
	}

	if fc.DatabaseURL != "" {
		cfg.DatabaseURL = fc.DatabaseURL
	}
	if fc.LLMProvider != "" {
		cfg.LLMProvider = fc.LLMProvider
	}
	if fc.EmbedProvider != "" {
		cfg.EmbedProvider = fc.EmbedProvider
	}
	if fc.OllamaHost != "" {
		cfg.OllamaHost = fc.OllamaHost
	}
	if fc.EmbedModel != "" {
		cfg.EmbedModel = fc.EmbedModel
	}
	if fc.EmbedDimension > 0 {
		cfg.EmbedDimension = fc.EmbedDimension
	}
	if fc.ChatModel != "" {
		cfg.ChatModel = fc.ChatModel
	}
	if fc.WhisperEndpoint != "" {
		cfg.WhisperEndpoint = fc.WhisperEndpoint
	}
	if fc.TTSEndpoint != "" {
		cfg.TTSEndpoint = fc.TTSEndpoint
	}
	if fc.TopK != nil {
		cfg.TopK = *fc.TopK
	}
	if fc.MinSimilarity != nil {
		cfg.MinSimilarity = *fc.MinSimilarity
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.Voice != "" {
		if v, err := models.ParseVoice(fc.Voice); err == nil {
			cfg.Voice = v
		}
	}
	if fc.InputModality == string(ModalityAudio) {
		cfg.InputModality = ModalityAudio
	}
	if fc.MaxHistoryTurns != nil {
		cfg.MaxHistoryTurns = *fc.MaxHistoryTurns
	}
}

// clamp forces the conversation knobs into their documented ranges.
func (c *Config) clamp() {
	if c.TopK < 1 {
		c.TopK = 1
	} else if c.TopK > 10 {
		c.TopK = 10
	}
	c.MinSimilarity = clampUnit(c.MinSimilarity)
	c.Temperature = clampUnit(c.Temperature)
	if c.MaxHistoryTurns < 0 {
		c.MaxHistoryTurns = 0
	}
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports configuration combinations that cannot work.
func (c *Config) Validate() error {
	if c.InputModality == ModalityAudio && (c.WhisperEndpoint == "" || c.WhisperAPIKey == "") {
		return fmt.Errorf("audio input requires DOCCHAT_WHISPER_ENDPOINT and DOCCHAT_WHISPER_API_KEY")
	}
	return nil
}
