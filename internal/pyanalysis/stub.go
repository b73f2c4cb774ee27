//go:build !cgo

package pyanalysis

import (
	"context"
	"fmt"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

// Analyzer is the non-CGO stand-in; every call fails.
type Analyzer struct{}

var _ contract.MetricsAnalyzer = &Analyzer{} // Compile-time check

// NewAnalyzer creates a new Python analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return false
}

// Version implements the MetricsAnalyzer interface.
func (a *Analyzer) Version() int {
	return AnalyzerVersion
}

// Analyze implements the MetricsAnalyzer interface.
func (a *Analyzer) Analyze(_ context.Context, path string, _ []byte) (schema.MetricSet, error) {
	return schema.MetricSet{}, fmt.Errorf("%w: %s: Python analysis requires CGO (tree-sitter)", contract.ErrMetricsUnavailable, path)
}
