package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/debtspot/schema"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the spreadsheet output.
const (
	hotspotSheet = "hotspots"
	skippedSheet = "skipped"
)

// writeRecordsXLSX writes the records to a workbook with a "hotspots" sheet, plus a
// "skipped" sheet when some modules could not be measured. Numbers keep full precision.
func writeRecordsXLSX(w io.Writer, result *schema.ScanResult, columns schema.ColumnLayout) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", hotspotSheet); err != nil {
		return err
	}

	header := csvHeader(columns)
	if err := setRow(f, hotspotSheet, 1, toCells(header)); err != nil {
		return err
	}
	for i, r := range result.Records {
		if err := setRow(f, hotspotSheet, i+2, xlsxRow(r, columns)); err != nil {
			return err
		}
	}
	if len(result.Records) > 0 {
		lastCell, err := excelize.CoordinatesToCellName(len(header), len(result.Records)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(hotspotSheet, "A1:"+lastCell, nil); err != nil {
			return err
		}
	}

	if len(result.Skipped) > 0 {
		if _, err := f.NewSheet(skippedSheet); err != nil {
			return err
		}
		if err := setRow(f, skippedSheet, 1, []any{"path", "reason"}); err != nil {
			return err
		}
		for i, s := range result.Skipped {
			if err := setRow(f, skippedSheet, i+2, []any{s.Path, s.Reason}); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// xlsxRow renders one record with native cell types in the order of csvHeader.
func xlsxRow(r schema.HotspotRecord, columns schema.ColumnLayout) []any {
	if columns == schema.BasicColumns {
		return []any{r.Path, string(r.PathType), r.MaintainabilityIndex, r.ChangesCount, r.HotspotIndex}
	}
	return []any{
		r.Path,
		string(r.PathType),
		r.HalsteadVolume,
		r.CyclomaticComplexity,
		r.LinesOfCode,
		r.CommentsPercentage,
		r.MaintainabilityIndex,
		r.ChangesCount,
		r.HotspotIndex,
	}
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
