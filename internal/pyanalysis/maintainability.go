// Package pyanalysis computes maintainability metrics for Python modules.
package pyanalysis

import (
	"math"

	"github.com/huangsam/debtspot/schema"
)

// AnalyzerVersion changes whenever a metric definition changes.
const AnalyzerVersion = 2

// PerfectMaintainability is the index assigned to modules without code.
const PerfectMaintainability = 100.0

// counts is the raw tally gathered from one syntax tree.
type counts struct {
	operators     map[string]int
	operands      map[string]int
	codeLines     int
	commentLines  int
	cyclomaticSum int
}

func newCounts() *counts {
	return &counts{operators: map[string]int{}, operands: map[string]int{}}
}

// HalsteadVolume returns (N1+N2) * log2(n1+n2) for the given distinct and total counts.
func HalsteadVolume(distinctOperators, distinctOperands, totalOperators, totalOperands int) float64 {
	vocabulary := distinctOperators + distinctOperands
	if vocabulary == 0 {
		return 0
	}
	length := totalOperators + totalOperands
	return float64(length) * math.Log2(float64(vocabulary))
}

// MaintainabilityIndex returns the Visual Studio variant of the index, bounded to [0, 100].
// Modules without code are perfectly maintainable.
func MaintainabilityIndex(volume float64, cyclomatic, loc int) float64 {
	if loc <= 0 {
		return PerfectMaintainability
	}
	lnVolume := 0.0
	if volume > 1 {
		lnVolume = math.Log(volume)
	}
	raw := 171 - 5.2*lnVolume - 0.23*float64(cyclomatic) - 16.2*math.Log(float64(loc))
	mi := raw * 100 / 171
	return math.Max(0, math.Min(PerfectMaintainability, mi))
}

// CommentsPercentage returns comment lines as a share of code lines, capped at 100.
func CommentsPercentage(commentLines, loc int) float64 {
	if loc <= 0 {
		return 0
	}
	return math.Min(100, 100*float64(commentLines)/float64(loc))
}

// metricSet turns a tally into the published metrics.
func (c *counts) metricSet() schema.MetricSet {
	if c.codeLines == 0 {
		return schema.MetricSet{
			CommentLines:         c.commentLines,
			MaintainabilityIndex: PerfectMaintainability,
		}
	}

	totalOperators, totalOperands := 0, 0
	for _, n := range c.operators {
		totalOperators += n
	}
	for _, n := range c.operands {
		totalOperands += n
	}
	volume := HalsteadVolume(len(c.operators), len(c.operands), totalOperators, totalOperands)

	return schema.MetricSet{
		HalsteadVolume:       volume,
		CyclomaticComplexity: c.cyclomaticSum,
		LinesOfCode:          c.codeLines,
		CommentLines:         c.commentLines,
		CommentsPercentage:   CommentsPercentage(c.commentLines, c.codeLines),
		MaintainabilityIndex: MaintainabilityIndex(volume, c.cyclomaticSum, c.codeLines),
	}
}
