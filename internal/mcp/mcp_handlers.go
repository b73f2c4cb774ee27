package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/debtspot/core"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	deps    Dependencies
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.Scan(ctx, cfg, h.deps.Client, h.deps.Analyzer, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	result.Commit = core.HeadCommit(ctx, h.deps.Client, cfg.RepoPath)

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// configFor layers the request arguments over the server's base configuration.
func (h *toolHandler) configFor(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()

	if p := request.GetString("repo_path", ""); p != "" {
		if err := contract.ResolveScanRoot(ctx, cfg, h.deps.Client, p); err != nil {
			return nil, err
		}
	}

	limit := request.GetInt("limit", cfg.ResultLimit)
	if limit < 0 || limit > contract.MaxResultLimit {
		return nil, fmt.Errorf("limit must be between 0 and %d (received %d)", contract.MaxResultLimit, limit)
	}
	cfg.ResultLimit = limit

	if pt := request.GetString("path_type", ""); pt != "" {
		cfg.PathType = schema.PathType(pt)
		if _, ok := schema.ValidPathTypes[cfg.PathType]; !ok {
			return nil, fmt.Errorf("invalid path_type '%s'. must be module, package, all", pt)
		}
	}

	if f := request.GetString("formula", ""); f != "" {
		cfg.Formula = schema.ScoringFormula(f)
		if _, ok := schema.ValidScoringFormulas[cfg.Formula]; !ok {
			return nil, fmt.Errorf("invalid formula '%s'. must be ratio, product", f)
		}
	}

	if s := request.GetString("since", ""); s != "" {
		since, err := contract.ParseDate(s, time.Now())
		if err != nil {
			return nil, fmt.Errorf("since: %w", err)
		}
		cfg.Since = since
	}
	return cfg, nil
}
