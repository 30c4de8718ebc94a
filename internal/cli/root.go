// Package cli wires the components together behind the legalrag command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brucruz/legal-case-rag/internal/config"
	"github.com/brucruz/legal-case-rag/internal/embedding"
	"github.com/brucruz/legal-case-rag/internal/store"
)

var (
	cfgPath string

	rootCmd = &cobra.Command{
		Use:           "legalrag",
		Short:         "Semantic search over legal case law",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./configs/config.yaml", "path to the config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func buildStore(cfg *config.Config) (store.VectorStore, error) {
	switch cfg.Store.Backend {
	case "postgres":
		return store.ConnectPostgres(&cfg.Database)
	case "chromem":
		return store.NewChromemStore(cfg.Store.Path, false)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	base, err := embedding.NewOpenAIEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	return embedding.NewRetryEmbedder(base, &cfg.EmbedLLM), nil
}
