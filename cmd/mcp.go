package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/dokploy-deploy/internal/git"
	"github.com/joescharf/dokploy-deploy/internal/mcp"
	"github.com/joescharf/dokploy-deploy/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client inspect repositories and past deploy runs without
touching the Dokploy instance. Configure in Claude Code with:

  {
    "mcpServers": {
      "dokploy": { "command": "dokploy-deploy", "args": ["mcp"] }
    }
  }

Available tools: dokploy_detect, dokploy_plan, dokploy_parse_remote,
dokploy_history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// stdout carries the protocol, so the journal is opened quietly and
	// a failure only disables the history tool.
	var s store.Store
	if viper.GetBool("history.enabled") {
		if opened, err := openStore(ctx, viper.GetString("history.db_path")); err == nil {
			s = opened
			defer opened.Close()
		} else {
			ui.Warning("Run history unavailable: %v", err)
		}
	}

	srv := mcp.NewServer(s, git.NewClient(), mcp.Options{
		Domain:            viper.GetString("domain"),
		HeuristicFallback: viper.GetBool("monorepo.heuristic_fallback"),
		Version:           buildVersion,
	})
	return srv.ServeStdio(ctx)
}
