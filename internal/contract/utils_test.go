package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorGrade(t *testing.T) {
	tests := []struct {
		name  string
		mi    float64
		grade string
	}{
		{"healthy", 75, "A"},
		{"moderate", 15, "B"},
		{"poor", 3, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetColorGrade(tt.mi), tt.grade)
		})
	}
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excludes []string
		expected bool
	}{
		{"no patterns", "app/main.py", nil, false},
		{"glob on base name", "app/api_pb2.py", []string{"*_pb2.py"}, true},
		{"glob on full path", "app/gen/x.py", []string{"app/gen/*"}, true},
		{"directory prefix at root", "venv/lib/site.py", []string{"venv/"}, true},
		{"directory at any depth", "app/__pycache__/x.py", []string{"__pycache__/"}, true},
		{"directory suffix does not match partial name", "myvenv/x.py", []string{"venv/"}, false},
		{"suffix match", "setup.cfg.py", []string{".cfg.py"}, true},
		{"exact path", "conftest.py", []string{"conftest.py"}, true},
		{"path under plain pattern", "tests/unit/test_a.py", []string{"tests"}, true},
		{"plain pattern is not a substring match", "latest.py", []string{"test"}, false},
		{"leading dot slash is ignored", "docs/conf.py", []string{"./docs"}, true},
		{"blank patterns are skipped", "a.py", []string{" ", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestDefaultExcludes(t *testing.T) {
	assert.True(t, ShouldIgnore(".venv/lib/python3.12/site.py", DefaultExcludes))
	assert.True(t, ShouldIgnore("pkg/__pycache__/mod.py", DefaultExcludes))
	assert.True(t, ShouldIgnore("build/lib/pkg/mod.py", DefaultExcludes))
	assert.False(t, ShouldIgnore("pkg/builder.py", DefaultExcludes))
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, path, f.Name())
}

func TestToSlashRel(t *testing.T) {
	base := filepath.Join("repo", "root")

	rel, err := ToSlashRel(base, filepath.Join(base, "pkg", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "pkg/mod.py", rel)

	rel, err = ToSlashRel(base, base)
	require.NoError(t, err)
	assert.Equal(t, ".", rel)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.py", TruncatePath("short.py", 20))
	assert.Equal(t, "...c/d.py", TruncatePath("a/b/c/d.py", 9))
	assert.Equal(t, "a/b/c/d.py", TruncatePath("a/b/c/d.py", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitOK},
		{"input", fmt.Errorf("%w: bad root", ErrInput), ExitInput},
		{"metrics", fmt.Errorf("parse a.py: %w", ErrMetricsUnavailable), ExitMetricsUnavailable},
		{"history", fmt.Errorf("%w: no git", ErrHistoryUnavailable), ExitHistoryUnavailable},
		{"threshold", ErrThresholdExceeded, ExitThresholdExceeded},
		{"other", errors.New("boom"), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}
}
