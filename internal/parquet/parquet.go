// Package parquet exports hotspot records to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"

	"github.com/huangsam/debtspot/schema"
	"github.com/parquet-go/parquet-go"
)

// HotspotRow is one hotspot record flattened for columnar storage.
type HotspotRow struct {
	// Rank is the 1-based position in the rendered order
	Rank int32 `parquet:"rank,snappy"`

	// Path is the slash-separated module or package path relative to the scan root
	Path string `parquet:"path,snappy"`

	// PathType is "module" or "package"
	PathType string `parquet:"path_type,snappy"`

	HalsteadVolume       float64 `parquet:"halstead_volume,snappy"`
	CyclomaticComplexity int32   `parquet:"cyclomatic_complexity,snappy"`
	LinesOfCode          int32   `parquet:"loc,snappy"`
	CommentsPercentage   float64 `parquet:"comments_percentage,snappy"`
	MaintainabilityIndex float64 `parquet:"maintainability_index,snappy"`

	// Grade is the A/B/C maintainability band
	Grade string `parquet:"grade,snappy"`

	ChangesCount int32   `parquet:"changes_count,snappy"`
	HotspotIndex float64 `parquet:"hotspot_index,snappy"`

	// Deleted marks modules that exist only in history
	Deleted bool `parquet:"deleted,snappy"`

	// Formula names the hotspot formula, e.g. "ratio/v2"
	Formula string `parquet:"formula,dict,snappy"`
}

// ConvertRecords flattens a scan result into Parquet rows, keeping the record order.
func ConvertRecords(result *schema.ScanResult) []HotspotRow {
	formula := fmt.Sprintf("%s/v%d", result.Formula, result.FormulaVersion)
	rows := make([]HotspotRow, 0, len(result.Records))
	for _, r := range schema.EnrichRecords(result.Records) {
		rows = append(rows, HotspotRow{
			Rank:                 int32(r.Rank),
			Path:                 r.Path,
			PathType:             string(r.PathType),
			HalsteadVolume:       r.HalsteadVolume,
			CyclomaticComplexity: int32(r.CyclomaticComplexity),
			LinesOfCode:          int32(r.LinesOfCode),
			CommentsPercentage:   r.CommentsPercentage,
			MaintainabilityIndex: r.MaintainabilityIndex,
			Grade:                r.Grade,
			ChangesCount:         int32(r.ChangesCount),
			HotspotIndex:         r.HotspotIndex,
			Deleted:              r.Deleted,
			Formula:              formula,
		})
	}
	return rows
}

// WriteHotspots writes rows to w as a single Parquet file.
func WriteHotspots(w io.Writer, rows []HotspotRow) error {
	// The schema is derived from the HotspotRow struct tags
	writer := parquet.NewGenericWriter[HotspotRow](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
