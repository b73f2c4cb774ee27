package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/debtspot/schema"
)

// SortRecords orders records in place by the given field. Numeric fields sort
// descending except the maintainability index, which puts the worst first.
// Path ascending breaks every tie, so the order is total.
func SortRecords(records []schema.HotspotRecord, field schema.SortField) {
	slices.SortFunc(records, func(a, b schema.HotspotRecord) int {
		if c := compareField(a, b, field); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

func compareField(a, b schema.HotspotRecord, field schema.SortField) int {
	switch field {
	case schema.SortPath:
		return 0
	case schema.SortMI:
		return cmp.Compare(a.MaintainabilityIndex, b.MaintainabilityIndex)
	case schema.SortHalstead:
		return cmp.Compare(b.HalsteadVolume, a.HalsteadVolume)
	case schema.SortCyclomatic:
		return cmp.Compare(b.CyclomaticComplexity, a.CyclomaticComplexity)
	case schema.SortLOC:
		return cmp.Compare(b.LinesOfCode, a.LinesOfCode)
	case schema.SortComments:
		return cmp.Compare(b.CommentsPercentage, a.CommentsPercentage)
	case schema.SortChangesCount:
		return cmp.Compare(b.ChangesCount, a.ChangesCount)
	default: // SortHotspot
		return cmp.Compare(b.HotspotIndex, a.HotspotIndex)
	}
}

// FilterByType keeps the records of one path type. AllPaths keeps everything.
func FilterByType(records []schema.HotspotRecord, pt schema.PathType) []schema.HotspotRecord {
	if pt == "" || pt == schema.AllPaths {
		return records
	}
	filtered := make([]schema.HotspotRecord, 0, len(records))
	for _, r := range records {
		if r.PathType == pt {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// RankRecords sorts records by field and returns the top 'limit' of them.
// A limit of 0 returns all records.
func RankRecords(records []schema.HotspotRecord, field schema.SortField, limit int) []schema.HotspotRecord {
	SortRecords(records, field)
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
