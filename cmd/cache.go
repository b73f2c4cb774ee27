package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/iocache"
	"github.com/huangsam/debtspot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	connStr := viper.GetString("cache-db-connect")

	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("%w: invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", contract.ErrInput, backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrInput, err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on metric cache management.
//
// Cache subcommands skip sharedSetup so they work outside a Git repository.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the opt-in metric cache.",
	Long: `Inspect and maintain the metric cache selected with --cache-backend.

The cache maps file contents to their computed metrics so unchanged modules
are not parsed again. It is disabled unless a backend other than none is set.

Examples:
  # Inspect the local SQLite cache
  debtspot cache status --cache-backend sqlite

  # Drop all cached metrics in PostgreSQL
  debtspot cache clear --cache-backend postgresql --cache-db-connect "host=localhost dbname=debtspot"

  # Roll the schema back to its first version
  debtspot cache migrate --cache-backend sqlite --target-version 1`,
}

// cacheClearCmd clears the metric cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached metrics",
	Long: `Delete the metric cache of the configured backend.

For SQLite the database file is removed. For MySQL and PostgreSQL the cache
and migration tables are dropped and recreated on the next run.

Examples:
  # Clear the local SQLite cache
  debtspot cache clear --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, schema version, entry count, entry age range and table size
of the metric cache.

Examples:
  # Check the SQLite cache
  debtspot cache status --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.GetCacheStatus(cfg.CacheBackend, cfg.CacheDBConnect)
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheMigrateCmd moves the cache schema to a given version.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back cache schema migrations",
	Long: `Run the embedded schema migrations of the configured cache backend.

A --target-version of -1 applies every migration, 0 removes them all and any
other value migrates up or down to that version.

Examples:
  # Bring the MySQL cache to the latest schema
  debtspot cache migrate --cache-backend mysql --cache-db-connect "user:pass@tcp(localhost:3306)/debtspot"`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.CacheBackend == schema.NoneBackend {
			contract.LogFatal("Failed to migrate cache", fmt.Errorf("%w: no cache backend selected", contract.ErrInput))
		}
		if err := iocache.Migrate(cfg.CacheBackend, cfg.CacheDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
	},
}
