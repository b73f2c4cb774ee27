// Package schema holds the data shared by collection, aggregation and output.
package schema

// MetricSet holds the software metrics of a module or an aggregated package.
type MetricSet struct {
	HalsteadVolume       float64 `json:"halstead_volume"`
	CyclomaticComplexity int     `json:"cyclomatic_complexity"`
	LinesOfCode          int     `json:"lines_of_code"`
	CommentLines         int     `json:"comment_lines"`
	CommentsPercentage   float64 `json:"comments_percentage"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
}

// IsEmpty reports whether the metric set describes code without a single line of code.
func (m MetricSet) IsEmpty() bool {
	return m.LinesOfCode == 0
}

// HotspotRecord joins a path with its metrics, churn and derived hotspot index.
type HotspotRecord struct {
	Path         string   `json:"path"`
	PathType     PathType `json:"path_type"`
	ChangesCount int      `json:"changes_count"`
	HotspotIndex float64  `json:"hotspot_index"`
	Deleted      bool     `json:"deleted,omitempty"`
	MetricSet
}

// SkippedFile records a module that could not be measured.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanResult is the complete outcome of one scan.
type ScanResult struct {
	Formula        ScoringFormula  `json:"formula"`
	FormulaVersion int             `json:"formula_version"`
	Commit         string          `json:"commit,omitempty"` // HEAD of the scanned repository, when known
	Records        []HotspotRecord `json:"records"`
	Skipped        []SkippedFile   `json:"skipped"`
}

// CountByType returns how many records of the given path type are present.
func (s ScanResult) CountByType(pt PathType) int {
	n := 0
	for _, r := range s.Records {
		if r.PathType == pt {
			n++
		}
	}
	return n
}
