package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/config"
	srv "github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/server"
)

func searchCMD() *cobra.Command {
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "search [question]",
		Short: "Show recall candidates for a question without answering",
		Args:  cobra.MinimumNArgs(1),
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
			pipeline, err := srv.BuildPipeline(ctx, cfg)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			plan, hits, err := pipeline.Search(ctx, question)
			if err != nil {
				return err
			}

			fmt.Printf("comparison=%v seasons=%v hits=%d\n\n", plan.IsComparison, plan.Seasons, len(hits))
			for i, h := range hits {
				text := h.Text
				if len(text) > 160 {
					text = text[:160] + "..."
				}
				fmt.Printf("%2d. dist=%.4f season=%d %s p.%d c.%d\n    %s\n",
					i+1, h.Distance, h.Meta.Season, h.Meta.Source, h.Meta.Page, h.Meta.ChunkIndex, text)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
