package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/gitclient"
	"github.com/huangsam/debtspot/internal/outwriter"
	"github.com/huangsam/debtspot/internal/pyanalysis"
	"github.com/huangsam/debtspot/schema"
)

// ExecuteCheck runs the check command for CI/CD gating.
// It scans like 'scan', prints the records above cfg.MaxHotspot and returns an error
// wrapping ErrThresholdExceeded when there is at least one.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := ensureAnalyzer(); err != nil {
		return err
	}
	start := time.Now()
	result, err := Scan(ctx, cfg, gitclient.New(cfg.HistoryBackend), pyanalysis.NewAnalyzer(), mgr)
	if err != nil {
		return err
	}
	violations := Violations(result.Records, cfg.MaxHotspot)
	outwriter.PrintCheckResult(violations, len(result.Records), cfg, time.Since(start))
	if len(violations) > 0 {
		return fmt.Errorf("%w: %d record(s) above %.*f", contract.ErrThresholdExceeded, len(violations), cfg.Precision, cfg.MaxHotspot)
	}
	return nil
}

// Violations returns the records whose hotspot index exceeds limit, in their input order.
func Violations(records []schema.HotspotRecord, limit float64) []schema.HotspotRecord {
	var out []schema.HotspotRecord
	for _, r := range records {
		if r.HotspotIndex > limit {
			out = append(out, r)
		}
	}
	return out
}
