package cmd

import (
	"github.com/huangsam/debtspot/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the debtspot MCP server",
	Long: `Launch an MCP server on stdio that exposes the get_hotspots tool to AI agents.

Flags and config set the defaults for every tool call. Each call may override
the repository path, limit, path type, formula and history start.`,
	Args: cobra.MaximumNArgs(1),
	// Stdout carries the protocol, so setup must not print anything there.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
