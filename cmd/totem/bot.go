package main

import (
	"context"
	"errors"

	"github.com/aretw0/totem/internal/cli"
	"github.com/aretw0/totem/pkg/adapters/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  `Polls the Telegram Bot API for updates. The token is read from TELEGRAM_BOT_TOKEN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.TelegramToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
		}
		assets, _ := cmd.Flags().GetString("assets")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		engine, backend, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		api, err := telegram.Connect(cfg.TelegramToken, cfg.TelegramDebug)
		if err != nil {
			return err
		}
		logger.Info("Authorised on account", "username", api.Self.UserName)

		bot := telegram.New(engine, api,
			telegram.WithUsername(api.Self.UserName),
			telegram.WithAssetsDir(assets),
			telegram.WithLogger(logger),
		)
		if err := bot.RegisterCommands(); err != nil {
			logger.Warn("Failed to register bot commands", "error", err)
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)
		go func() {
			<-ctx.Done()
			api.StopReceivingUpdates()
		}()

		logger.Info("Bot is running", "store", cfg.Store)
		return bot.Run(ctx, updates)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.Flags().String("assets", ".", "Directory that catalog image paths are relative to")
}
