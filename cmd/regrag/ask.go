package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/config"
	srv "github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/server"
)

func askCMD() *cobra.Command {
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question against the indexed regulations",
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
			answer, err := pipeline.Ask(ctx, question)
			if err != nil {
				return err
			}

			fmt.Println(answer.Text)
			if len(answer.Citations) > 0 {
				fmt.Println("\nSources:")
				for _, c := range answer.Citations {
					fmt.Printf("[%d] %s p.%d\n", c.Ref, c.Source, c.Page)
				}
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
