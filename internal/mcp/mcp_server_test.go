package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	mcp_internal "github.com/huangsam/debtspot/internal/mcp"
	"github.com/huangsam/debtspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baseConfig(root string) *contract.Config {
	return &contract.Config{
		RepoPath: root,
		ScanRoot: root,
		Excludes: append([]string{}, contract.DefaultExcludes...),
		Workers:  2,
		Formula:  schema.RatioFormula,
		Sort:     schema.SortHotspot,
		PathType: schema.AllPaths,
	}
}

func callTool(t *testing.T, deps mcp_internal.Dependencies, cfg *contract.Config, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil, deps)
	tool := s.GetTool("get_hotspots")
	require.NotNil(t, tool, "Tool get_hotspots should exist")

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_hotspots",
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestGetHotspots(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.py"), []byte("a = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.py"), []byte("b = 1\n"), 0o644))

	client := &contract.MockGitClient{}
	client.On("ChangedPaths", mock.Anything, root, "", mock.AnythingOfType("time.Time"), time.Time{}).
		Return([]string{"pkg/a.py", "pkg/a.py", "b.py"}, nil)
	client.On("GetRepoHash", mock.Anything, root).Return("0123456789abcdef0123456789abcdef01234567", nil)
	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "pkg/a.py", mock.Anything).
		Return(schema.MetricSet{LinesOfCode: 10, MaintainabilityIndex: 50}, nil)
	analyzer.On("Analyze", mock.Anything, "b.py", mock.Anything).
		Return(schema.MetricSet{LinesOfCode: 10, MaintainabilityIndex: 80}, nil)
	deps := mcp_internal.Dependencies{Client: client, Analyzer: analyzer}

	res := callTool(t, deps, baseConfig(root), map[string]any{
		"path_type": "module",
		"formula":   "product",
		"limit":     1.0,
		"since":     "2020-01-01",
	})
	require.False(t, res.IsError, res.Content)

	var result schema.ScanResult
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &result))
	assert.Equal(t, schema.ProductFormula, result.Formula)
	assert.Equal(t, 1, result.FormulaVersion)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", result.Commit)
	require.Len(t, result.Records, 1)
	// product: a.py 2*50/100 = 1.0 beats b.py 1*80/100 = 0.8
	assert.Equal(t, "pkg/a.py", result.Records[0].Path)
	assert.InDelta(t, 1.0, result.Records[0].HotspotIndex, 1e-9)
}

func TestGetHotspotsValidationErrors(t *testing.T) {
	root := t.TempDir()
	deps := mcp_internal.Dependencies{Client: &contract.MockGitClient{}, Analyzer: &contract.MockMetricsAnalyzer{}}

	tests := []struct {
		name    string
		args    map[string]any
		message string
	}{
		{"invalid path_type", map[string]any{"path_type": "class"}, "invalid path_type"},
		{"invalid formula", map[string]any{"formula": "sum"}, "invalid formula"},
		{"negative limit", map[string]any{"limit": -1.0}, "limit must be between"},
		{"invalid since", map[string]any{"since": "yesterday-ish"}, "invalid date format"},
		{"missing repo_path", map[string]any{"repo_path": filepath.Join(root, "missing")}, "cannot read root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, deps, baseConfig(root), tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, res.Content[0].(mcp.TextContent).Text, tt.message)
		})
	}
}

func TestGetHotspotsAnalysisFailure(t *testing.T) {
	root := t.TempDir()
	client := &contract.MockGitClient{}
	client.On("ChangedPaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()
	deps := mcp_internal.Dependencies{Client: client, Analyzer: &contract.MockMetricsAnalyzer{}}

	res := callTool(t, deps, baseConfig(root), map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "no Python modules found")
}
