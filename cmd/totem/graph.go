package main

import (
	"context"
	"fmt"

	"github.com/aretw0/totem/internal/cli"
	"github.com/aretw0/totem/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the quiz as a Mermaid flowchart",
	Long: `Prints questions, options and the categories they count towards as Mermaid.
With --user the progress of that session is highlighted (requires a persistent store).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		engine, backend, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		var overlay *graph.Overlay
		if userID, _ := cmd.Flags().GetString("user"); userID != "" {
			s, err := engine.Session(ctx, userID)
			if err != nil {
				return fmt.Errorf("session %q: %w", userID, err)
			}
			overlay = graph.OverlayFor(engine.Quiz(), s)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Quiz(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("user", "", "Highlight the progress of this session")
}
