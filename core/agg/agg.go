// Package agg rolls module metrics and change counts up into packages.
package agg

import (
	"math"
	"path"
	"slices"

	"github.com/huangsam/debtspot/core/algo"
	"github.com/huangsam/debtspot/internal/pyanalysis"
	"github.com/huangsam/debtspot/schema"
)

// RootPackage is the path of the package that encloses the whole scan.
const RootPackage = "."

// Options controls how records are built.
type Options struct {
	Formula schema.ScoringFormula

	// IncludeDeleted turns change counts of modules missing from disk into deleted
	// module records. When false such counts are dropped.
	IncludeDeleted bool

	// OnDisk holds modules that exist under the scan root but have no metrics,
	// such as skipped files. They are never reported as deleted.
	OnDisk map[string]struct{}
}

// Combine merges two metric sets. Sizes and counts add, the maintainability index
// keeps the minimum and the comments percentage is recomputed from the summed lines.
// Combine is associative and commutative with identity EmptyMetrics().
func Combine(a, b schema.MetricSet) schema.MetricSet {
	out := schema.MetricSet{
		HalsteadVolume:       a.HalsteadVolume + b.HalsteadVolume,
		CyclomaticComplexity: a.CyclomaticComplexity + b.CyclomaticComplexity,
		LinesOfCode:          a.LinesOfCode + b.LinesOfCode,
		CommentLines:         a.CommentLines + b.CommentLines,
		MaintainabilityIndex: math.Min(a.MaintainabilityIndex, b.MaintainabilityIndex),
	}
	out.CommentsPercentage = pyanalysis.CommentsPercentage(out.CommentLines, out.LinesOfCode)
	return out
}

// EmptyMetrics is the metric set of a package without measured modules.
func EmptyMetrics() schema.MetricSet {
	return schema.MetricSet{MaintainabilityIndex: pyanalysis.PerfectMaintainability}
}

// Ancestors returns every enclosing package of a module path, innermost first,
// ending with RootPackage.
func Ancestors(modulePath string) []string {
	var dirs []string
	for dir := path.Dir(modulePath); ; dir = path.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == RootPackage || dir == "/" {
			return dirs
		}
	}
}

type packageAcc struct {
	metrics schema.MetricSet
	changes int
}

// Aggregate builds one record per module and per enclosing package and scores them.
// The result is ordered by hotspot index descending, then path ascending.
func Aggregate(metrics map[string]schema.MetricSet, changes map[string]int, opts Options) []schema.HotspotRecord {
	modulePaths := make([]string, 0, len(metrics))
	for p := range metrics {
		modulePaths = append(modulePaths, p)
	}
	var deletedPaths []string
	if opts.IncludeDeleted {
		for p := range changes {
			if _, ok := metrics[p]; ok {
				continue
			}
			if _, ok := opts.OnDisk[p]; ok {
				continue
			}
			deletedPaths = append(deletedPaths, p)
		}
	}
	// Fold in a fixed order so float sums are reproducible.
	slices.Sort(modulePaths)
	slices.Sort(deletedPaths)

	records := make([]schema.HotspotRecord, 0, 2*(len(modulePaths)+len(deletedPaths)))
	packages := make(map[string]*packageAcc)
	addToPackages := func(modulePath string, ms schema.MetricSet, n int) {
		for _, dir := range Ancestors(modulePath) {
			acc, ok := packages[dir]
			if !ok {
				acc = &packageAcc{metrics: EmptyMetrics()}
				packages[dir] = acc
			}
			acc.metrics = Combine(acc.metrics, ms)
			acc.changes += n
		}
	}

	for _, p := range modulePaths {
		ms := metrics[p]
		n := max(changes[p], 0)
		records = append(records, schema.HotspotRecord{
			Path:         p,
			PathType:     schema.ModulePath,
			ChangesCount: n,
			HotspotIndex: algo.HotspotIndex(opts.Formula, n, ms, false),
			MetricSet:    ms,
		})
		addToPackages(p, ms, n)
	}

	for _, p := range deletedPaths {
		ms := EmptyMetrics()
		n := max(changes[p], 0)
		records = append(records, schema.HotspotRecord{
			Path:         p,
			PathType:     schema.ModulePath,
			ChangesCount: n,
			HotspotIndex: algo.HotspotIndex(opts.Formula, n, ms, true),
			Deleted:      true,
			MetricSet:    ms,
		})
		addToPackages(p, ms, n)
	}

	for dir, acc := range packages {
		records = append(records, schema.HotspotRecord{
			Path:         dir,
			PathType:     schema.PackagePath,
			ChangesCount: acc.changes,
			HotspotIndex: algo.HotspotIndex(opts.Formula, acc.changes, acc.metrics, false),
			MetricSet:    acc.metrics,
		})
	}

	algo.SortRecords(records, schema.SortHotspot)
	return records
}
