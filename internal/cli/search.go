package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brucruz/legal-case-rag/internal/config"
	"github.com/brucruz/legal-case-rag/internal/models"
	"github.com/brucruz/legal-case-rag/internal/search"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed case law",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	if err := s.Init(cmd.Context()); err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	svc := search.NewService(s, embedder)
	results, err := svc.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return err
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	outputTable(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, results []models.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputTable(cmd *cobra.Command, results []models.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, result := range results {
		cmd.Printf("%2d. [%.3f] %s - %s (%s, %s)\n",
			i+1,
			result.Similarity,
			result.Case.CaseNumber,
			result.Case.Title,
			result.Case.Court,
			result.Case.Date.Format("2006-01-02"),
		)
		cmd.Printf("    %s\n\n", snippet(result.RelevantText, 200))
	}
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
