// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/gitclient"
	"github.com/huangsam/debtspot/internal/pyanalysis"
	"github.com/huangsam/debtspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Dependencies are the collaborators a tool call scans with.
// Zero fields fall back to the configured git backend and the tree-sitter analyzer.
type Dependencies struct {
	Client   contract.GitClient
	Analyzer contract.MetricsAnalyzer
}

// NewMCPServer initializes and configures the debtspot MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, deps Dependencies) *server.MCPServer {
	s := server.NewMCPServer(
		"Debtspot Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	if deps.Client == nil {
		deps.Client = gitclient.New(baseCfg.HistoryBackend)
	}
	if deps.Analyzer == nil {
		deps.Analyzer = pyanalysis.NewAnalyzer()
	}
	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		deps:    deps,
	}

	s.AddTool(mcp.NewTool("get_hotspots",
		mcp.WithDescription("Rank the modules and packages of a Python repository by technical debt risk, combining maintainability metrics with git change frequency."),
		mcp.WithString("repo_path", mcp.Description("Directory to scan inside a Git work tree (defaults to the server's working directory).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of records returned (0 = all).")),
		mcp.WithString("path_type", mcp.Description("Which records to return. Defaults to 'all'."),
			mcp.Enum(string(schema.ModulePath), string(schema.PackagePath), string(schema.AllPaths))),
		mcp.WithString("formula", mcp.Description("Hotspot formula. Defaults to 'ratio'."),
			mcp.Enum(string(schema.RatioFormula), string(schema.ProductFormula))),
		mcp.WithString("since", mcp.Description("Only count changes after this date ('YYYY-MM-DD', RFC3339 or 'N units ago').")),
	), h.handleGetHotspots)

	return s
}

// StartMCPServer starts the debtspot MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr, Dependencies{})
	return server.ServeStdio(s)
}
