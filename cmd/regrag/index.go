package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/config"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	openai_provider "github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/provider/openai"
)

func indexCMD() *cobra.Command {
	var srcDir string
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "index",
		Short: "Ingest regulation text files into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.LLM.Validate(); err != nil {
				return err
			}
			if err := cfg.Storage.Postgres.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			store, err := index.NewPGStore(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer store.Close()

			llm := openai_provider.NewClient(
				cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel,
				cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.Timeout,
			)

			ing := index.NewIngestor(store, llm, cfg.Retrieval.Dataset,
				cfg.Chunking.ChunkSize, cfg.Chunking.OverlapUnits, nil)
			stats, err := ing.Run(ctx, index.TextDirSource{Dir: srcDir})
			if err != nil {
				return err
			}

			fmt.Printf("indexed %d chunks from %d documents\n", stats.Chunks, stats.Documents)
			for _, source := range stats.MissingSeason {
				fmt.Printf("warning: no season inferred for %s\n", source)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&srcDir, "src", "data", "directory of extracted .txt regulation documents")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
