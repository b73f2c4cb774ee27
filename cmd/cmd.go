// Package cmd defines the command-line interface for debtspot.
package cmd

import (
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("since", "", "Only count changes after this date (YYYY-MM-DD, RFC3339 or 'N units ago')")
	rootCmd.PersistentFlags().String("until", "", "Only count changes before this date (YYYY-MM-DD, RFC3339 or 'N units ago')")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail instead of skipping modules that cannot be parsed")
	rootCmd.PersistentFlags().Bool("include-deleted", false, "Add records for modules present in history but deleted on disk")
	rootCmd.PersistentFlags().String("git-backend", string(schema.ExecHistory), "Git history reader: exec or native")
	rootCmd.PersistentFlags().String("formula", string(schema.RatioFormula), "Hotspot formula: ratio or product")
	rootCmd.PersistentFlags().String("sort", string(schema.SortHotspot), "Sort field (hotspot_index, path, maintainability_index, halstead_volume, cyclomatic_complexity, lines_of_code, comments_percentage, changes_count)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = unlimited)")
	rootCmd.PersistentFlags().String("type", string(schema.AllPaths), "Record type to show: module or package or all")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or markdown or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("columns", string(schema.ExtendedColumns), "CSV column layout: extended or basic")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Metric cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the cache (sqlite file path, or DSN for mysql/postgresql)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("max-hotspot", contract.DefaultMaxHotspot, "Fail when a record's hotspot index exceeds this value")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
