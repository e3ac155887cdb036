// Package cli provides the command-line interface for docchat.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat/internal/config"
	"github.com/raphaelgruber/docchat/internal/llm"
	"github.com/raphaelgruber/docchat/internal/metrics"
	"github.com/raphaelgruber/docchat/internal/search"
	"github.com/raphaelgruber/docchat/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, passage store and metrics
	cfg        config.Config
	passages   *store.Store
	collector  *metrics.Collector
	logCleanup func() error

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Conversational assistant over an embedded document corpus",
	Long: `Docchat answers questions about a pre-embedded document corpus.

Each question is embedded, matched against the stored passages by cosine
similarity, and the best matches are handed to the configured LLM as
context for the answer. Input can be typed or spoken; answers can be
read back through a synthesized voice.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		logCleanup = cleanup

		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := context.Background()
		var err error
		passages, err = store.New(ctx, store.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("connect to embedding store: %w", err)
		}

		collector = metrics.NewCollector()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if passages != nil {
			passages.Close()
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// getEngine creates the retrieval engine with lazy embedder initialization.
func getEngine() (*search.Engine, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(llmConfig())
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return search.NewEngine(embedder, passages, collector), nil
}

// getModel lazily initializes the chat model.
func getModel() (*llm.Model, error) {
	if model == nil {
		var err error
		model, err = llm.NewModel(llmConfig())
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}
	return model, nil
}

func llmConfig() llm.Config {
	return llm.Config{
		Provider:        llm.Provider(cfg.LLMProvider),
		EmbedProvider:   llm.Provider(cfg.EmbedProvider),
		EmbedModel:      cfg.EmbedModel,
		EmbedDimension:  cfg.EmbedDimension,
		ChatModel:       cfg.ChatModel,
		OllamaHost:      cfg.OllamaHost,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}
