// Package algo holds the hotspot formulas and the ranking rules.
package algo

import (
	"math"

	"github.com/huangsam/debtspot/schema"
)

// MinimumMaintainability bounds the ratio formula so a zero index cannot divide by zero.
const MinimumMaintainability = 1.0

// HotspotIndex scores a record. Records without code and deleted modules
// carry no risk and score 0 under every formula.
//
//	ratio   (v2): changes * 100 / max(MI, 1)
//	product (v1): changes * MI / 100
func HotspotIndex(formula schema.ScoringFormula, changes int, ms schema.MetricSet, deleted bool) float64 {
	if deleted || ms.IsEmpty() || changes <= 0 {
		return 0
	}
	mi := ms.MaintainabilityIndex
	if math.IsNaN(mi) {
		return 0
	}
	switch formula {
	case schema.ProductFormula:
		return float64(changes) * math.Max(0, mi) / 100
	default:
		return float64(changes) * 100 / math.Max(mi, MinimumMaintainability)
	}
}
