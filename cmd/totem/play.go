package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/totem/internal/cli"
	"github.com/aretw0/totem/internal/presentation/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take the quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		rawAnswers, _ := cmd.Flags().GetString("answers")
		answers, err := cli.ParseAnswers(rawAnswers)
		if err != nil {
			return err
		}
		if answers == nil && !cli.IsInteractive(os.Stdin) {
			return errors.New("stdin is not a terminal; pass --answers to play non-interactively")
		}

		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			userID = uuid.NewString()
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		engine, backend, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		out := cmd.OutOrStdout()
		if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner {
			tui.PrintBanner(out, engine.Quiz().Brand.Title)
		}

		_, err = cli.Play(ctx, engine, cli.PlayOptions{
			UserID:  userID,
			Answers: answers,
			Input:   cli.NewInterruptibleReader(os.Stdin, ctx.Done()),
			Output:  out,
			Render:  tui.NewRenderer(),
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("answers", "", "Comma separated option numbers (1-based) to play non-interactively")
	playCmd.Flags().String("user", "", "Session id (defaults to a random UUID)")
	playCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
