package cmd

import (
	"github.com/huangsam/debtspot/core"
	"github.com/spf13/cobra"
)

// scanCmd ranks modules and packages by hotspot index.
var scanCmd = &cobra.Command{
	Use:   "scan [repo-path]",
	Short: "Rank Python modules and packages by hotspot index.",
	Long: `Measure every Python module under the repository root, count how often Git
history touched it, and rank modules and their packages by hotspot index.

The hotspot index grows with change frequency and shrinks with maintainability.
Modules that cannot be parsed are skipped and reported unless --strict is set.

Examples:
  # Rank the whole repository
  debtspot scan

  # Show the 20 worst packages only
  debtspot scan --type package --limit 20

  # Only count changes from the last six months
  debtspot scan --since "6 months ago"

  # Reproducible CSV for tracking over time
  debtspot scan --output csv --output-file hotspots.csv

  # Use the legacy product formula
  debtspot scan --formula product`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteScan(rootCtx, cfg, cacheManager)
	},
}
