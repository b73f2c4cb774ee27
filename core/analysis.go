package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/huangsam/debtspot/core/agg"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
	"golang.org/x/sync/errgroup"
)

// pythonSuffix is the extension of the modules we measure.
const pythonSuffix = ".py"

// isPythonModule reports whether a slash-separated path is a Python module that survives excludes.
// A module inside an excluded directory is excluded too, the same way discovery prunes it.
func isPythonModule(cfg *contract.Config, rel string) bool {
	if !strings.HasSuffix(rel, pythonSuffix) || contract.ShouldIgnore(rel, cfg.Excludes) {
		return false
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if contract.ShouldIgnore(dir+"/", cfg.Excludes) {
			return false
		}
	}
	return true
}

// discoverModules walks the scan root and returns the slash-separated paths of every
// Python module not excluded by cfg. The result is sorted.
func discoverModules(ctx context.Context, cfg *contract.Config) ([]string, error) {
	var modules []string
	err := filepath.WalkDir(cfg.ScanRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == cfg.ScanRoot {
				return err
			}
			contract.LogWarn("Skipping unreadable path", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := contract.ToSlashRel(cfg.ScanRoot, p)
		if err != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if contract.ShouldIgnore(rel+"/", cfg.Excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && isPythonModule(cfg, rel) {
			modules = append(modules, rel)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot read root %q: %w", contract.ErrInput, cfg.ScanRoot, err)
	}
	slices.Sort(modules)
	return modules, nil
}

// collectMetrics measures every discovered module on a bounded worker pool.
// Unparseable modules are skipped and reported unless cfg.Strict is set.
func collectMetrics(ctx context.Context, cfg *contract.Config, analyzer contract.MetricsAnalyzer, mgr contract.CacheManager) (map[string]schema.MetricSet, []schema.SkippedFile, error) {
	modules, err := discoverModules(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(modules) == 0 {
		return nil, nil, fmt.Errorf("%w: no Python modules found under %s", contract.ErrInput, cfg.ScanRoot)
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetMetricStore()
	}

	var (
		mu      sync.Mutex
		metrics = make(map[string]schema.MetricSet, len(modules))
		skipped []schema.SkippedFile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, rel := range modules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ms, err := measureModule(gctx, cfg, analyzer, store, rel)
			if err != nil {
				if !errors.Is(err, contract.ErrMetricsUnavailable) || cfg.Strict {
					return err
				}
				contract.LogWarn("Skipping "+rel, err)
				mu.Lock()
				skipped = append(skipped, schema.SkippedFile{Path: rel, Reason: skipReason(err)})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			metrics[rel] = ms
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	slices.SortFunc(skipped, func(a, b schema.SkippedFile) int { return strings.Compare(a.Path, b.Path) })
	if len(metrics) == 0 {
		return nil, skipped, fmt.Errorf("%w: none of the %d modules could be measured", contract.ErrMetricsUnavailable, len(modules))
	}
	return metrics, skipped, nil
}

// measureModule reads one module and returns its metrics, consulting the cache first.
func measureModule(ctx context.Context, cfg *contract.Config, analyzer contract.MetricsAnalyzer, store contract.CacheStore, rel string) (schema.MetricSet, error) {
	source, err := os.ReadFile(filepath.Join(cfg.ScanRoot, filepath.FromSlash(rel)))
	if err != nil {
		return schema.MetricSet{}, fmt.Errorf("%w: %w", contract.ErrMetricsUnavailable, err)
	}
	return cachedAnalyze(ctx, analyzer, store, rel, source)
}

// skipReason drops the sentinel prefix so the report reads naturally.
func skipReason(err error) string {
	return strings.TrimPrefix(err.Error(), contract.ErrMetricsUnavailable.Error()+": ")
}

// collectChanges counts how often each Python module under the scan root was touched.
func collectChanges(ctx context.Context, cfg *contract.Config, history contract.HistoryReader) (map[string]int, error) {
	touched, err := history.ChangedPaths(ctx, cfg.RepoPath, cfg.ScanScope, cfg.Since, cfg.Until)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, contract.ErrHistoryUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", contract.ErrHistoryUnavailable, err)
	}
	return agg.CountChanges(touched, cfg.ScanScope, func(rel string) bool {
		return isPythonModule(cfg, rel)
	}), nil
}
