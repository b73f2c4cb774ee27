package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/debtspot/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 0 // unlimited
	MaxResultLimit     = 100000
	DefaultPrecision   = 2
	MaxPrecision       = 6
	DefaultMaxHotspot  = 100.0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DefaultExcludes are always applied before any user-provided pattern.
var DefaultExcludes = []string{
	".git/", ".hg/", ".venv/", "venv/", "__pycache__/", ".tox/", ".nox/",
	".mypy_cache/", ".pytest_cache/", "build/", "dist/", "node_modules/", ".eggs/",
}

// Config holds the runtime configuration for a scan.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath  string // absolute git work tree root
	ScanRoot  string // absolute directory being scanned
	ScanScope string // ScanRoot relative to RepoPath ("" when equal)

	Since time.Time
	Until time.Time

	Excludes       []string
	Workers        int
	Strict         bool
	IncludeDeleted bool
	HistoryBackend schema.HistoryBackend
	Formula        schema.ScoringFormula

	Sort        schema.SortField
	ResultLimit int
	PathType    schema.PathType

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Columns    schema.ColumnLayout
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	MaxHotspot float64

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Since          string `mapstructure:"since"`
	Until          string `mapstructure:"until"`
	Exclude        string `mapstructure:"exclude"`
	Workers        int    `mapstructure:"workers"`
	Strict         bool   `mapstructure:"strict"`
	IncludeDeleted bool   `mapstructure:"include-deleted"`
	GitBackend     string `mapstructure:"git-backend"`
	Formula        string `mapstructure:"formula"`
	Sort           string `mapstructure:"sort"`
	Limit          int    `mapstructure:"limit"`
	Type           string `mapstructure:"type"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Columns        string `mapstructure:"columns"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`

	// --- Fields from checkCmd.Flags() ---
	MaxHotspot float64 `mapstructure:"max-hotspot"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	return ResolveScanRoot(ctx, cfg, client, input.RepoPathStr)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Strict = input.Strict
	cfg.IncludeDeleted = input.IncludeDeleted
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.MaxHotspot < 0 {
		return fmt.Errorf("max-hotspot cannot be negative (received %.2f)", input.MaxHotspot)
	}
	cfg.MaxHotspot = input.MaxHotspot

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, markdown, csv, json, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("output format '%s' requires --output-file", cfg.Output)
	}

	cfg.Columns = schema.ColumnLayout(strings.ToLower(input.Columns))
	if _, ok := schema.ValidColumnLayouts[cfg.Columns]; !ok {
		return fmt.Errorf("invalid columns '%s'. must be extended, basic", input.Columns)
	}

	cfg.Formula = schema.ScoringFormula(strings.ToLower(input.Formula))
	if _, ok := schema.ValidScoringFormulas[cfg.Formula]; !ok {
		return fmt.Errorf("invalid formula '%s'. must be ratio, product", input.Formula)
	}

	cfg.Sort = schema.SortField(strings.ToLower(input.Sort))
	if _, ok := schema.ValidSortFields[cfg.Sort]; !ok {
		return fmt.Errorf("invalid sort field '%s'", input.Sort)
	}

	cfg.PathType = schema.PathType(strings.ToLower(input.Type))
	if _, ok := schema.ValidPathTypes[cfg.PathType]; !ok {
		return fmt.Errorf("invalid type '%s'. must be module, package, all", input.Type)
	}

	cfg.HistoryBackend = schema.HistoryBackend(strings.ToLower(input.GitBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid git backend '%s'. must be exec, native", input.GitBackend)
	}

	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}

	return nil
}

// processTimeRange parses the optional history window. An empty bound is unbounded.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.Since, cfg.Until = time.Time{}, time.Time{}

	if input.Since != "" {
		t, err := ParseDate(input.Since, now)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		cfg.Since = t
	}
	if input.Until != "" {
		t, err := ParseDate(input.Until, now)
		if err != nil {
			return fmt.Errorf("--until: %w", err)
		}
		cfg.Until = t
	}

	if !cfg.Since.IsZero() && !cfg.Until.IsZero() && cfg.Since.After(cfg.Until) {
		return fmt.Errorf("since (%s) cannot be after until (%s)", cfg.Since.Format(DateTimeFormat), cfg.Until.Format(DateTimeFormat))
	}
	return nil
}

// ResolveScanRoot checks the scan directory and locates the enclosing git work tree.
// A missing or unreadable directory is an input error. A directory outside any
// repository means history is unavailable.
func ResolveScanRoot(ctx context.Context, cfg *Config, client GitClient, repoPathStr string) error {
	if repoPathStr == "" {
		repoPathStr = "."
	}
	absScanRoot, err := filepath.Abs(repoPathStr)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve %q: %w", ErrInput, repoPathStr, err)
	}
	absScanRoot = filepath.Clean(absScanRoot)

	info, err := os.Stat(absScanRoot)
	if err != nil {
		return fmt.Errorf("%w: cannot read root %q: %w", ErrInput, repoPathStr, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root %q is not a directory", ErrInput, repoPathStr)
	}
	cfg.ScanRoot = absScanRoot

	gitRoot, err := client.GetRepoRoot(ctx, absScanRoot)
	if err != nil {
		return fmt.Errorf("%w: %q is not inside a git repository: %w", ErrHistoryUnavailable, repoPathStr, err)
	}
	gitRoot = filepath.Clean(gitRoot)
	// Resolve symlinks on both sides so /tmp vs /private/tmp style aliases agree.
	if resolved, err := filepath.EvalSymlinks(gitRoot); err == nil {
		gitRoot = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absScanRoot); err == nil {
		absScanRoot = resolved
		cfg.ScanRoot = resolved
	}
	cfg.RepoPath = gitRoot

	scope, err := ToSlashRel(gitRoot, absScanRoot)
	if err != nil || strings.HasPrefix(scope, "..") {
		return fmt.Errorf("%w: %q lies outside repository %q", ErrHistoryUnavailable, absScanRoot, gitRoot)
	}
	if scope == "." {
		scope = ""
	}
	cfg.ScanScope = scope
	return nil
}
