package contract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debtspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes every validation step.
func validInput(repoPath string) *ConfigRawInput {
	return &ConfigRawInput{
		RepoPathStr:  repoPath,
		Workers:      4,
		GitBackend:   string(schema.ExecHistory),
		Formula:      string(schema.RatioFormula),
		Sort:         string(schema.SortHotspot),
		Type:         string(schema.AllPaths),
		Output:       string(schema.TextOut),
		Precision:    DefaultPrecision,
		Columns:      string(schema.ExtendedColumns),
		Color:        "yes",
		CacheBackend: string(schema.NoneBackend),
		MaxHotspot:   DefaultMaxHotspot,
	}
}

func TestProcessAndValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid minimal config", func(t *testing.T) {
		dir := t.TempDir()
		client := new(MockGitClient)
		client.On("GetRepoRoot", ctx, dir).Return(dir, nil)

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(ctx, cfg, client, validInput(dir)))

		assert.Equal(t, "", cfg.ScanScope)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, schema.RatioFormula, cfg.Formula)
		assert.Equal(t, schema.AllPaths, cfg.PathType)
		assert.True(t, cfg.Since.IsZero())
		assert.Equal(t, DefaultExcludes, cfg.Excludes)
		client.AssertExpectations(t)
	})

	t.Run("subdirectory becomes the scan scope", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "src", "app")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		client := new(MockGitClient)
		client.On("GetRepoRoot", ctx, sub).Return(dir, nil)

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(ctx, cfg, client, validInput(sub)))
		assert.Equal(t, "src/app", cfg.ScanScope)
	})

	t.Run("user excludes are appended to defaults", func(t *testing.T) {
		dir := t.TempDir()
		client := new(MockGitClient)
		client.On("GetRepoRoot", ctx, dir).Return(dir, nil)

		input := validInput(dir)
		input.Exclude = "tests/, *_pb2.py ,"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(ctx, cfg, client, input))
		assert.Equal(t, append(append([]string{}, DefaultExcludes...), "tests/", "*_pb2.py"), cfg.Excludes)
	})

	t.Run("since and until are parsed", func(t *testing.T) {
		dir := t.TempDir()
		client := new(MockGitClient)
		client.On("GetRepoRoot", ctx, dir).Return(dir, nil)

		input := validInput(dir)
		input.Since = "2024-01-01"
		input.Until = "2024-06-30"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(ctx, cfg, client, input))
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.Since)
		assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), cfg.Until)
	})

	t.Run("not a git repository", func(t *testing.T) {
		dir := t.TempDir()
		client := new(MockGitClient)
		client.On("GetRepoRoot", ctx, dir).Return("", errors.New("fatal: not a git repository"))

		err := ProcessAndValidate(ctx, &Config{}, client, validInput(dir))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHistoryUnavailable)
		assert.Equal(t, ExitHistoryUnavailable, ExitCode(err))
	})

	t.Run("missing root", func(t *testing.T) {
		client := new(MockGitClient)
		err := ProcessAndValidate(ctx, &Config{}, client, validInput(filepath.Join(t.TempDir(), "nope")))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInput)
		client.AssertNotCalled(t, "GetRepoRoot", mock.Anything, mock.Anything)
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.py")
		require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
		err := ProcessAndValidate(ctx, &Config{}, new(MockGitClient), validInput(file))
		assert.ErrorIs(t, err, ErrInput)
	})
}

func TestValidateSimpleInputsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"negative limit", func(in *ConfigRawInput) { in.Limit = -1 }},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "yaml" }},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }},
		{"xlsx without file", func(in *ConfigRawInput) { in.Output = "xlsx" }},
		{"bad columns", func(in *ConfigRawInput) { in.Columns = "wide" }},
		{"bad formula", func(in *ConfigRawInput) { in.Formula = "sum" }},
		{"bad sort", func(in *ConfigRawInput) { in.Sort = "age" }},
		{"bad type", func(in *ConfigRawInput) { in.Type = "class" }},
		{"bad git backend", func(in *ConfigRawInput) { in.GitBackend = "libgit2" }},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }},
		{"mysql without dsn", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }},
		{"negative threshold", func(in *ConfigRawInput) { in.MaxHotspot = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(".")
			tt.mutate(input)
			assert.Error(t, validateSimpleInputs(&Config{}, input))
		})
	}
}

func TestProcessTimeRange(t *testing.T) {
	t.Run("since after until", func(t *testing.T) {
		input := &ConfigRawInput{Since: "2024-06-01", Until: "2024-01-01"}
		assert.Error(t, processTimeRange(&Config{}, input, fixedNow))
	})

	t.Run("invalid since", func(t *testing.T) {
		input := &ConfigRawInput{Since: "last tuesday"}
		err := processTimeRange(&Config{}, input, fixedNow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--since")
	})

	t.Run("relative since", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, processTimeRange(cfg, &ConfigRawInput{Since: "1 year ago"}, fixedNow))
		assert.Equal(t, fixedNow.AddDate(-1, 0, 0), cfg.Since)
		assert.True(t, cfg.Until.IsZero())
	})
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "localhost/db"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=x"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=x"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Excludes: []string{"a/"}, Workers: 2}
	clone := cfg.Clone()
	clone.Excludes[0] = "b/"
	clone.Workers = 8
	assert.Equal(t, "a/", cfg.Excludes[0])
	assert.Equal(t, 2, cfg.Workers)
}
