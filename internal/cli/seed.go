package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brucruz/legal-case-rag/internal/chunker"
	"github.com/brucruz/legal-case-rag/internal/config"
	"github.com/brucruz/legal-case-rag/internal/corpus"
	"github.com/brucruz/legal-case-rag/internal/ingest"
)

var seedCasesDir string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Ingest the case corpus into the vector store",
	Long: `Loads every case from the corpus directory, chunks its full text,
embeds each chunk and persists the result. Re-running is safe: each case's
chunks are dropped and regenerated, and case metadata is never overwritten.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCasesDir, "cases", "./data", "directory holding cases.json and texts/")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.Init(ctx); err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	inputs, err := corpus.Load(seedCasesDir)
	if err != nil {
		return err
	}
	log.Info().Int("cases", len(inputs)).Msg("seeding corpus")

	pipeline := ingest.NewPipeline(s, embedder,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithChunkOptions(chunkOptions(cfg)...),
	)
	if err := pipeline.IngestAll(ctx, inputs); err != nil {
		return err
	}

	log.Info().Msg("seeding complete")
	return nil
}

func chunkOptions(cfg *config.Config) []chunker.Option {
	var opts []chunker.Option
	if cfg.Ingest.MaxChunkSize > 0 {
		opts = append(opts, chunker.WithMaxChunkSize(cfg.Ingest.MaxChunkSize))
	}
	if cfg.Ingest.MinChunkSize > 0 {
		opts = append(opts, chunker.WithMinChunkSize(cfg.Ingest.MinChunkSize))
	}
	return opts
}
