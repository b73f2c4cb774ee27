package cmd

import (
	"github.com/huangsam/debtspot/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Fail when any record's hotspot index exceeds a threshold.",
	Long: `Run a full scan and fail with exit code 5 when a ranked record has a hotspot
index above --max-hotspot. The offending records are printed.

Filters such as --type and --limit apply before the threshold, so only the
records a scan would render can fail the check.

Examples:
  # Gate a pull request on module hotspots
  debtspot check --max-hotspot 40 --type module

  # Only consider the recent history
  debtspot check --max-hotspot 25 --since "3 months ago"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteCheck(rootCtx, cfg, cacheManager)
	},
}
