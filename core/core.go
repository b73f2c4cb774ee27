// Package core has core logic for collection, aggregation and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/debtspot/core/agg"
	"github.com/huangsam/debtspot/core/algo"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/gitclient"
	"github.com/huangsam/debtspot/internal/outwriter"
	"github.com/huangsam/debtspot/internal/pyanalysis"
	"github.com/huangsam/debtspot/schema"
	"golang.org/x/sync/errgroup"
)

// ExecutorFunc defines the function signature for executing a command on a validated config.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteScan runs a full scan and writes the ranked records.
// It serves as the main entry point for the 'scan' command.
func ExecuteScan(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := ensureAnalyzer(); err != nil {
		return err
	}
	start := time.Now()
	client := gitclient.New(cfg.HistoryBackend)
	result, err := Scan(ctx, cfg, client, pyanalysis.NewAnalyzer(), mgr)
	if err != nil {
		return err
	}
	result.Commit = HeadCommit(ctx, client, cfg.RepoPath)
	return outwriter.WriteResult(result, cfg, time.Since(start))
}

// ensureAnalyzer fails fast when the binary was built without the tree-sitter analyzer,
// instead of skipping every module one by one.
func ensureAnalyzer() error {
	if pyanalysis.IsAvailable() {
		return nil
	}
	return fmt.Errorf("%w: Python analysis requires CGO (tree-sitter); rebuild with CGO_ENABLED=1", contract.ErrMetricsUnavailable)
}

// HeadCommit returns the HEAD commit hash of repoPath, or "" when it cannot be resolved.
func HeadCommit(ctx context.Context, client contract.GitClient, repoPath string) string {
	hash, err := client.GetRepoHash(ctx, repoPath)
	if err != nil {
		contract.LogWarn("Cannot resolve HEAD commit", err)
		return ""
	}
	return hash
}

// Scan collects metrics and history for cfg.ScanRoot, aggregates them into module and
// package records and ranks the records the way cfg asks for.
// The two collection passes are independent and run concurrently.
func Scan(ctx context.Context, cfg *contract.Config, history contract.HistoryReader, analyzer contract.MetricsAnalyzer, mgr contract.CacheManager) (*schema.ScanResult, error) {
	var (
		metrics map[string]schema.MetricSet
		skipped []schema.SkippedFile
		changes map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, skipped, err = collectMetrics(gctx, cfg, analyzer, mgr)
		return err
	})
	g.Go(func() error {
		var err error
		changes, err = collectChanges(gctx, cfg, history)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	onDisk := make(map[string]struct{}, len(skipped))
	for _, s := range skipped {
		onDisk[s.Path] = struct{}{}
	}
	records := agg.Aggregate(metrics, changes, agg.Options{
		Formula:        cfg.Formula,
		IncludeDeleted: cfg.IncludeDeleted,
		OnDisk:         onDisk,
	})
	records = algo.RankRecords(algo.FilterByType(records, cfg.PathType), cfg.Sort, cfg.ResultLimit)

	if skipped == nil {
		skipped = []schema.SkippedFile{}
	}
	return &schema.ScanResult{
		Formula:        cfg.Formula,
		FormulaVersion: schema.FormulaVersions[cfg.Formula],
		Records:        records,
		Skipped:        skipped,
	}, nil
}
