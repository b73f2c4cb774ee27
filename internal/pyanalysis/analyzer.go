//go:build cgo

package pyanalysis

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

// Analyzer computes metrics for Python source with tree-sitter.
// It is safe for concurrent use; every call owns its parser.
type Analyzer struct{}

var _ contract.MetricsAnalyzer = &Analyzer{} // Compile-time check

// NewAnalyzer creates a new Python analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}

// Version implements the MetricsAnalyzer interface.
func (a *Analyzer) Version() int {
	return AnalyzerVersion
}

// Analyze implements the MetricsAnalyzer interface.
func (a *Analyzer) Analyze(ctx context.Context, path string, source []byte) (schema.MetricSet, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return schema.MetricSet{}, fmt.Errorf("%w: parse %s: %w", contract.ErrMetricsUnavailable, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		return schema.MetricSet{}, fmt.Errorf("%w: %s: syntax error near line %d", contract.ErrMetricsUnavailable, path, line)
	}

	c := newCounts()
	w := &walker{source: source, counts: c, codeRows: map[uint32]struct{}{}, commentRows: map[uint32]struct{}{}}
	w.visit(root)
	c.codeLines = len(w.codeRows)
	c.commentLines = len(w.commentRows)
	c.cyclomaticSum = cyclomatic(root)
	return c.metricSet(), nil
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node.
func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.HasError() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row) + 1
}
