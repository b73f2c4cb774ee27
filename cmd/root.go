package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/debtspot/core"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/gitclient"
	"github.com/huangsam/debtspot/internal/iocache"
	"github.com/huangsam/debtspot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the base name of the optional YAML config file.
const configName = ".debtspot"

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global cache manager instance.
var cacheManager contract.CacheManager

// rootCmd is the command-line entrypoint for all other commands.
// Without a subcommand it behaves like 'scan'.
var rootCmd = &cobra.Command{
	Use:   "debtspot [repo-path]",
	Short: "Rank Python modules and packages by tech-debt hotspot index.",
	Long: `Debtspot combines static maintainability metrics with Git change frequency
to show which Python modules and packages are both hard to maintain and often touched.

Running debtspot without a subcommand is the same as 'debtspot scan'.`,
	Version:            version,
	Args:               cobra.MaximumNArgs(1),
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE:            sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteScan(rootCtx, cfg, cacheManager)
	},
}

// setConfigLocation points viper at --config or the default search paths.
func setConfigLocation() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigLocation()

	viper.SetEnvPrefix("DEBTSPOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("formula", schema.RatioFormula)
	viper.SetDefault("sort", schema.SortHotspot)
	viper.SetDefault("type", schema.AllPaths)
	viper.SetDefault("columns", schema.ExtendedColumns)
	viper.SetDefault("git-backend", schema.ExecHistory)
	viper.SetDefault("cache-backend", schema.NoneBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("max-hotspot", contract.DefaultMaxHotspot)
}

// loadConfigFile reads the config file if present. A missing file is not an error.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%w: error reading config file: %w", contract.ErrInput, err)
		}
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	// 1. Merge defaults, file, env and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("%w: unable to unmarshal config: %w", contract.ErrInput, err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.RepoPathStr = args[0]
	} else {
		input.RepoPathStr = "."
	}

	// 4. Run all validation and complex parsing into the global 'cfg'.
	client := gitclient.New(schema.HistoryBackend(strings.ToLower(input.GitBackend)))
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return err
	}

	// 5. Open the metric cache with the validated backend.
	if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// ExecuteContext runs the root command under ctx, which cancels in-flight scans.
func ExecuteContext(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}
