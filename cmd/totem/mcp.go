package main

import (
	"context"

	"github.com/aretw0/totem/internal/cli"
	"github.com/aretw0/totem/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  `Exposes the quiz as Model Context Protocol tools over stdio, or over SSE with --sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		engine, backend, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		server := mcp.NewServer(engine, logger)

		sseAddr, _ := cmd.Flags().GetString("sse")
		if sseAddr != "" {
			baseURL, _ := cmd.Flags().GetString("base-url")
			return server.ServeSSE(ctx, sseAddr, baseURL)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio (e.g. :8081)")
	mcpCmd.Flags().String("base-url", "http://localhost:8081", "Public base URL announced to SSE clients")
}
