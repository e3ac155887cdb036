package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat/internal/chat"
	"github.com/raphaelgruber/docchat/internal/models"
)

var (
	askTopK    int
	askSim     float64
	askTemp    float64
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Long: `Ask a single question about the document corpus.

The question is embedded, matched against the stored passages and answered
by the configured LLM with the best matches as context. No conversation
state is kept.`,
	Example: `  docchat ask "What does the onboarding guide say about VPN access?"
  docchat ask "Summarize the refund policy" --sources`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of passages to retrieve (1-10)")
	askCmd.Flags().Float64Var(&askSim, "min-similarity", -1, "minimum cosine similarity for context passages (0-1)")
	askCmd.Flags().Float64Var(&askTemp, "temperature", -1, "generation temperature (0-1)")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved passages after the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	engine, err := getEngine()
	if err != nil {
		return err
	}
	model, err := getModel()
	if err != nil {
		return err
	}

	opts := chat.Options{TopK: cfg.TopK, MinSimilarity: cfg.MinSimilarity, Temperature: cfg.Temperature}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = askTopK
	}
	if cmd.Flags().Changed("min-similarity") {
		opts.MinSimilarity = askSim
	}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = askTemp
	}

	pipeline := chat.NewPipeline(chat.NewAssembler(engine, cfg.MaxHistoryTurns), model, collector)
	session := chat.NewSession()

	reply, retrieved, err := runExchange("thinking", func() (string, []models.ScoredPassage, error) {
		return pipeline.Exchange(context.Background(), session, args[0], opts)
	})
	if err != nil {
		return err
	}

	renderReply(reply, chat.NewStreamer(cfg.StreamDelay))

	if askSources {
		fmt.Println()
		if len(retrieved) == 0 {
			fmt.Println("No passages matched above the similarity threshold.")
			return nil
		}
		fmt.Printf("Sources (%d):\n", len(retrieved))
		for i, p := range retrieved {
			fmt.Printf("%d. [%.3f] %s\n", i+1, p.Score, firstLine(p.Content))
		}
	}
	return nil
}

// firstLine truncates passage content to a single display line.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || i >= 120 {
			return s[:i] + "…"
		}
	}
	return s
}
