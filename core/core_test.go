package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/iocache"
	"github.com/huangsam/debtspot/internal/pyanalysis"
	"github.com/huangsam/debtspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func testConfig(root string) *contract.Config {
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

func metricsOf(loc int, mi float64) schema.MetricSet {
	return schema.MetricSet{LinesOfCode: loc, CyclomaticComplexity: 1, HalsteadVolume: 10, MaintainabilityIndex: mi}
}

func paths(records []schema.HotspotRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"pkg/a.py":    "a = 1\n",
		"pkg/b.py":    "b = 2\n",
		"main.py":     "import pkg\n",
		"README.md":   "# readme\n",
		"venv/lib.py": "x = 0\n",
	})
}

func TestScan(t *testing.T) {
	root := sampleTree(t)
	cfg := testConfig(root)

	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "pkg/a.py", mock.Anything).Return(metricsOf(10, 50), nil)
	analyzer.On("Analyze", mock.Anything, "pkg/b.py", mock.Anything).Return(metricsOf(20, 25), nil)
	analyzer.On("Analyze", mock.Anything, "main.py", mock.Anything).Return(metricsOf(5, 80), nil)

	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).Return([]string{
		"pkg/a.py", "pkg/a.py", "pkg/b.py", "main.py", "README.md", "venv/lib.py",
	}, nil)

	result, err := Scan(context.Background(), cfg, git, analyzer, nil)
	require.NoError(t, err)

	assert.Equal(t, schema.RatioFormula, result.Formula)
	assert.Equal(t, 2, result.FormulaVersion)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 3, result.CountByType(schema.ModulePath))
	assert.Equal(t, 2, result.CountByType(schema.PackagePath))

	// "." and pkg have 4 and 3 changes at MI 25, pkg/a.py has 2 at 50, b.py 1 at 25, main.py 1 at 80
	assert.Equal(t, []string{".", "pkg", "pkg/a.py", "pkg/b.py", "main.py"}, paths(result.Records))
	assert.InDelta(t, 16.0, result.Records[0].HotspotIndex, 1e-9)

	analyzer.AssertNumberOfCalls(t, "Analyze", 3)
	git.AssertExpectations(t)
}

func TestScanScoped(t *testing.T) {
	repo := writeTree(t, map[string]string{
		"src/app.py":   "x = 1\n",
		"other/lib.py": "y = 2\n",
	})
	cfg := testConfig(repo)
	cfg.ScanRoot = filepath.Join(repo, "src")
	cfg.ScanScope = "src"

	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "app.py", mock.Anything).Return(metricsOf(4, 50), nil)
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, repo, "src", time.Time{}, time.Time{}).
		Return([]string{"src/app.py", "src/app.py", "other/lib.py"}, nil)

	result, err := Scan(context.Background(), cfg, git, analyzer, nil)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	for _, r := range result.Records {
		assert.Equal(t, 2, r.ChangesCount, r.Path)
	}
	assert.ElementsMatch(t, []string{".", "app.py"}, paths(result.Records))
}

func TestScanSkipsUnparseableModules(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.py": "x = 1\n",
		"bad.py":  "def (:\n",
	})

	newAnalyzer := func() *contract.MockMetricsAnalyzer {
		analyzer := &contract.MockMetricsAnalyzer{}
		analyzer.On("Analyze", mock.Anything, "good.py", mock.Anything).Return(metricsOf(1, 90), nil)
		analyzer.On("Analyze", mock.Anything, "bad.py", mock.Anything).
			Return(schema.MetricSet{}, fmt.Errorf("%w: bad.py: syntax error near line 1", contract.ErrMetricsUnavailable))
		return analyzer
	}
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).Return([]string{"bad.py"}, nil)

	t.Run("skip and report", func(t *testing.T) {
		result, err := Scan(context.Background(), testConfig(root), git, newAnalyzer(), nil)
		require.NoError(t, err)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "bad.py", result.Skipped[0].Path)
		assert.Equal(t, "bad.py: syntax error near line 1", result.Skipped[0].Reason)
		assert.ElementsMatch(t, []string{".", "good.py"}, paths(result.Records))
	})

	t.Run("strict", func(t *testing.T) {
		cfg := testConfig(root)
		cfg.Strict = true
		_, err := Scan(context.Background(), cfg, git, newAnalyzer(), nil)
		assert.ErrorIs(t, err, contract.ErrMetricsUnavailable)
		assert.Equal(t, contract.ExitMetricsUnavailable, contract.ExitCode(err))
	})
}

func TestScanFailures(t *testing.T) {
	t.Run("no python modules", func(t *testing.T) {
		root := writeTree(t, map[string]string{"README.md": "hi\n", "venv/x.py": "x = 1\n"})
		git := &contract.MockGitClient{}
		git.On("ChangedPaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()

		_, err := Scan(context.Background(), testConfig(root), git, &contract.MockMetricsAnalyzer{}, nil)
		assert.ErrorIs(t, err, contract.ErrInput)
		assert.Contains(t, err.Error(), "no Python modules found")
	})

	t.Run("every module unparseable", func(t *testing.T) {
		root := writeTree(t, map[string]string{"a.py": "(\n"})
		analyzer := &contract.MockMetricsAnalyzer{}
		analyzer.On("Analyze", mock.Anything, "a.py", mock.Anything).
			Return(schema.MetricSet{}, fmt.Errorf("%w: syntax error", contract.ErrMetricsUnavailable))
		git := &contract.MockGitClient{}
		git.On("ChangedPaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()

		_, err := Scan(context.Background(), testConfig(root), git, analyzer, nil)
		assert.ErrorIs(t, err, contract.ErrMetricsUnavailable)
	})

	t.Run("history unavailable", func(t *testing.T) {
		root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
		analyzer := &contract.MockMetricsAnalyzer{}
		analyzer.On("Analyze", mock.Anything, "a.py", mock.Anything).Return(metricsOf(1, 90), nil).Maybe()
		git := &contract.MockGitClient{}
		git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).Return(nil, errors.New("not a git repository"))

		_, err := Scan(context.Background(), testConfig(root), git, analyzer, nil)
		assert.ErrorIs(t, err, contract.ErrHistoryUnavailable)
		assert.Equal(t, contract.ExitHistoryUnavailable, contract.ExitCode(err))
	})

	t.Run("missing root", func(t *testing.T) {
		cfg := testConfig(filepath.Join(t.TempDir(), "gone"))
		git := &contract.MockGitClient{}
		git.On("ChangedPaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()

		_, err := Scan(context.Background(), cfg, git, &contract.MockMetricsAnalyzer{}, nil)
		assert.ErrorIs(t, err, contract.ErrInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := sampleTree(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		git := &contract.MockGitClient{}
		git.On("ChangedPaths", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

		_, err := Scan(ctx, testConfig(root), git, &contract.MockMetricsAnalyzer{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScanRankingOptions(t *testing.T) {
	root := sampleTree(t)
	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "pkg/a.py", mock.Anything).Return(metricsOf(10, 50), nil)
	analyzer.On("Analyze", mock.Anything, "pkg/b.py", mock.Anything).Return(metricsOf(20, 25), nil)
	analyzer.On("Analyze", mock.Anything, "main.py", mock.Anything).Return(metricsOf(5, 80), nil)
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).
		Return([]string{"pkg/a.py", "pkg/a.py", "pkg/b.py", "main.py"}, nil)

	tests := []struct {
		name     string
		pathType schema.PathType
		sort     schema.SortField
		limit    int
		expected []string
	}{
		{"modules only", schema.ModulePath, schema.SortHotspot, 0, []string{"pkg/a.py", "pkg/b.py", "main.py"}},
		{"packages only", schema.PackagePath, schema.SortHotspot, 0, []string{".", "pkg"}},
		{"limit", schema.AllPaths, schema.SortHotspot, 2, []string{".", "pkg"}},
		{"by path", schema.AllPaths, schema.SortPath, 0, []string{".", "main.py", "pkg", "pkg/a.py", "pkg/b.py"}},
		{"by lines of code", schema.ModulePath, schema.SortLOC, 1, []string{"pkg/b.py"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(root)
			cfg.PathType = tt.pathType
			cfg.Sort = tt.sort
			cfg.ResultLimit = tt.limit

			result, err := Scan(context.Background(), cfg, git, analyzer, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, paths(result.Records))
		})
	}
}

func TestScanIncludeDeleted(t *testing.T) {
	root := writeTree(t, map[string]string{"pkg/live.py": "x = 1\n"})
	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "pkg/live.py", mock.Anything).Return(metricsOf(3, 60), nil)
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).
		Return([]string{"pkg/live.py", "pkg/gone.py", "pkg/gone.py"}, nil)

	cfg := testConfig(root)
	result, err := Scan(context.Background(), cfg, git, analyzer, nil)
	require.NoError(t, err)
	assert.NotContains(t, paths(result.Records), "pkg/gone.py")

	cfg.IncludeDeleted = true
	result, err = Scan(context.Background(), cfg, git, analyzer, nil)
	require.NoError(t, err)
	assert.Contains(t, paths(result.Records), "pkg/gone.py")
	for _, r := range result.Records {
		if r.Path == "pkg/gone.py" {
			assert.True(t, r.Deleted)
			assert.Zero(t, r.HotspotIndex)
			assert.Equal(t, 2, r.ChangesCount)
		}
	}
}

func TestScanIncludeDeletedKeepsSkippedModules(t *testing.T) {
	root := writeTree(t, map[string]string{"good.py": "x = 1\n", "bad.py": "def (:\n"})
	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "good.py", mock.Anything).Return(metricsOf(1, 90), nil)
	analyzer.On("Analyze", mock.Anything, "bad.py", mock.Anything).
		Return(schema.MetricSet{}, fmt.Errorf("%w: bad.py: syntax error near line 1", contract.ErrMetricsUnavailable))
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).
		Return([]string{"good.py", "bad.py", "bad.py", "gone.py"}, nil)

	cfg := testConfig(root)
	cfg.IncludeDeleted = true
	result, err := Scan(context.Background(), cfg, git, analyzer, nil)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "bad.py", result.Skipped[0].Path)
	assert.NotContains(t, paths(result.Records), "bad.py")
	assert.ElementsMatch(t, []string{".", "good.py", "gone.py"}, paths(result.Records))
	for _, r := range result.Records {
		if r.Path == "gone.py" {
			assert.True(t, r.Deleted)
		}
	}
}

func TestScanExcludedDirectoryHasNoChanges(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":             "x = 1\n",
		"tests/test_app.py":  "assert True\n",
		"tests/unit/deep.py": "y = 2\n",
	})
	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Analyze", mock.Anything, "app.py", mock.Anything).Return(metricsOf(1, 90), nil)
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).
		Return([]string{"app.py", "tests/test_app.py", "tests/unit/deep.py", "tests/unit/deep.py"}, nil)

	for _, exclude := range []string{"test*", "tests/"} {
		t.Run(exclude, func(t *testing.T) {
			cfg := testConfig(root)
			cfg.Excludes = append(cfg.Excludes, exclude)
			cfg.IncludeDeleted = true
			result, err := Scan(context.Background(), cfg, git, analyzer, nil)
			require.NoError(t, err)

			assert.ElementsMatch(t, []string{".", "app.py"}, paths(result.Records))
			for _, r := range result.Records {
				assert.Equal(t, 1, r.ChangesCount, r.Path)
				assert.False(t, r.Deleted, r.Path)
			}
		})
	}
}

func TestHeadCommit(t *testing.T) {
	git := &contract.MockGitClient{}
	git.On("GetRepoHash", mock.Anything, "/repo").Return("0123456789abcdef0123456789abcdef01234567", nil)
	git.On("GetRepoHash", mock.Anything, "/empty").Return("", fmt.Errorf("%w: get HEAD: reference not found", contract.ErrHistoryUnavailable))

	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", HeadCommit(context.Background(), git, "/repo"))
	assert.Empty(t, HeadCommit(context.Background(), git, "/empty"))
}

func TestEnsureAnalyzer(t *testing.T) {
	err := ensureAnalyzer()
	if pyanalysis.IsAvailable() {
		assert.NoError(t, err)
		return
	}
	assert.ErrorIs(t, err, contract.ErrMetricsUnavailable)
	assert.Contains(t, err.Error(), "requires CGO")
}

func TestScanUsesMetricCache(t *testing.T) {
	root := writeTree(t, map[string]string{"hit.py": "x = 1\n", "miss.py": "y = 2\n"})
	cached, err := json.Marshal(metricsOf(7, 42))
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", generateCacheKey([]byte("x = 1\n"))).Return(cached, 3, int64(1), nil)
	store.On("Get", generateCacheKey([]byte("y = 2\n"))).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", generateCacheKey([]byte("y = 2\n")), mock.Anything, 3, mock.AnythingOfType("int64")).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetMetricStore").Return(store)

	analyzer := &contract.MockMetricsAnalyzer{}
	analyzer.On("Version").Return(3)
	analyzer.On("Analyze", mock.Anything, "miss.py", mock.Anything).Return(metricsOf(2, 90), nil)
	git := &contract.MockGitClient{}
	git.On("ChangedPaths", mock.Anything, root, "", time.Time{}, time.Time{}).Return([]string{}, nil)

	cfg := testConfig(root)
	cfg.PathType = schema.ModulePath
	cfg.Sort = schema.SortPath
	result, err := Scan(context.Background(), cfg, git, analyzer, mgr)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 7, result.Records[0].LinesOfCode)
	assert.Equal(t, 2, result.Records[1].LinesOfCode)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, "hit.py", mock.Anything)
	store.AssertExpectations(t)
}

func TestCheckHitIgnoresStaleVersion(t *testing.T) {
	cached, err := json.Marshal(metricsOf(7, 42))
	require.NoError(t, err)
	store := &iocache.MockCacheStore{}
	store.On("Get", "k").Return(cached, 1, int64(1), nil)

	_, ok := checkCacheHit(store, "k", 2)
	assert.False(t, ok)
	ms, ok := checkCacheHit(store, "k", 1)
	assert.True(t, ok)
	assert.Equal(t, 7, ms.LinesOfCode)
}

func TestViolations(t *testing.T) {
	records := []schema.HotspotRecord{
		{Path: "a.py", HotspotIndex: 120},
		{Path: "b.py", HotspotIndex: 100},
		{Path: "c.py", HotspotIndex: 99.5},
	}
	assert.Equal(t, []string{"a.py"}, paths(Violations(records, 100)))
	assert.Empty(t, Violations(records, 500))
	assert.Len(t, Violations(records, 0), 3)
}
