package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the passages most similar to a query",
	Long: `Embed the query and rank the stored passages by cosine similarity,
without invoking the LLM. Useful for inspecting what context a question
would be answered from.`,
	Example: `  docchat search "expense reports"
  docchat search "deployment checklist" --top-k 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "number of passages to show (1-10)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := getEngine()
	if err != nil {
		return err
	}

	topK := cfg.TopK
	if cmd.Flags().Changed("top-k") {
		topK = searchTopK
	}

	results, err := engine.Search(context.Background(), args[0], topK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No passages found. Has the corpus been embedded?")
		return nil
	}

	for i, p := range results {
		fmt.Printf("%d. [%.3f]\n%s\n\n", i+1, p.Score, p.Content)
	}
	return nil
}
