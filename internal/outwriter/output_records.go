package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// csvHeader returns the CSV header for a column layout.
func csvHeader(columns schema.ColumnLayout) []string {
	if columns == schema.BasicColumns {
		return []string{"path", "path_type", "maintainability_index", "changes_count", "hotspot_index"}
	}
	return []string{
		"path",
		"path_type",
		"halstead_volume",
		"cyclomatic_complexity",
		"loc",
		"comments_percentage",
		"maintainability_index",
		"changes_count",
		"hotspot_index",
	}
}

// csvRow renders one record in the order of csvHeader.
func csvRow(r schema.HotspotRecord, columns schema.ColumnLayout, fmtFloat func(float64) string) []string {
	if columns == schema.BasicColumns {
		return []string{
			r.Path,
			string(r.PathType),
			fmtFloat(r.MaintainabilityIndex),
			strconv.Itoa(r.ChangesCount),
			fmtFloat(r.HotspotIndex),
		}
	}
	return []string{
		r.Path,
		string(r.PathType),
		fmtFloat(r.HalsteadVolume),
		strconv.Itoa(r.CyclomaticComplexity),
		strconv.Itoa(r.LinesOfCode),
		fmtFloat(r.CommentsPercentage),
		fmtFloat(r.MaintainabilityIndex),
		strconv.Itoa(r.ChangesCount),
		fmtFloat(r.HotspotIndex),
	}
}

// writeRecordsCSV writes one CSV row per record in the given order.
func writeRecordsCSV(w io.Writer, records []schema.HotspotRecord, columns schema.ColumnLayout, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, csvHeader(columns), func(cw *csv.Writer) error {
		for _, r := range records {
			if err := cw.Write(csvRow(r, columns, fmtFloat)); err != nil {
				return fmt.Errorf("failed to write CSV row for %s: %w", r.Path, err)
			}
		}
		return nil
	})
}

// tableHeaders returns the column titles of the table and markdown outputs.
func tableHeaders(columns schema.ColumnLayout) []string {
	headers := []string{"Rank", "Path", "Type", "Grade", "MI"}
	if columns != schema.BasicColumns {
		headers = append(headers, "Halstead", "CC", "LOC", "Comments%")
	}
	return append(headers, "Changes", "Hotspot")
}

// tableRow renders one enriched record for the table and markdown outputs.
// The path and grade cells are passed in so callers can decorate them.
func tableRow(r schema.EnrichedRecord, path, grade string, columns schema.ColumnLayout, fmtFloat func(float64) string) []string {
	pathType := string(r.PathType)
	if r.Deleted {
		pathType += " (deleted)"
	}
	row := []string{strconv.Itoa(r.Rank), path, pathType, grade, fmtFloat(r.MaintainabilityIndex)}
	if columns != schema.BasicColumns {
		row = append(row,
			fmtFloat(r.HalsteadVolume),
			strconv.Itoa(r.CyclomaticComplexity),
			strconv.Itoa(r.LinesOfCode),
			fmtFloat(r.CommentsPercentage),
		)
	}
	return append(row, strconv.Itoa(r.ChangesCount), fmtFloat(r.HotspotIndex))
}

// writeRecordsTable generates and writes the human-readable table.
func writeRecordsTable(w io.Writer, result *schema.ScanResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header(tableHeaders(cfg.Columns))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	packagePath := fmt.Sprint
	if cfg.UseColors {
		packagePath = contract.PathColor.SprintFunc()
	}

	var data [][]string
	for _, r := range schema.EnrichRecords(result.Records) {
		path := contract.TruncatePath(r.Path, pathWidth)
		if r.PathType == schema.PackagePath {
			path = packagePath(path)
		}
		grade := r.Grade
		if cfg.UseColors {
			grade = contract.GetColorGrade(r.MaintainabilityIndex)
		}
		data = append(data, tableRow(r, path, grade, cfg.Columns, fmtFloat))
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d records (%d modules, %d packages). Formula: %s v%d\n",
		len(result.Records), result.CountByType(schema.ModulePath), result.CountByType(schema.PackagePath),
		result.Formula, result.FormulaVersion); err != nil {
		return err
	}
	if len(result.Skipped) > 0 {
		warn := fmt.Sprint
		if cfg.UseColors {
			warn = color.New(color.FgYellow).SprintFunc()
		}
		if _, err := fmt.Fprintln(w, warn(fmt.Sprintf("Skipped %d unparseable modules: %s", len(result.Skipped), skippedPaths(result.Skipped)))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

// writeRecordsMarkdown writes a GitHub flavored markdown table.
func writeRecordsMarkdown(w io.Writer, result *schema.ScanResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	headers := tableHeaders(cfg.Columns)
	separators := make([]string, len(headers))
	for i := range separators {
		separators[i] = "---:"
	}
	separators[1] = ":---"

	lines := []string{markdownLine(headers), markdownLine(separators)}
	for _, r := range schema.EnrichRecords(result.Records) {
		path := "`" + r.Path + "`"
		lines = append(lines, markdownLine(tableRow(r, path, r.Grade, cfg.Columns, fmtFloat)))
	}
	if len(result.Skipped) > 0 {
		lines = append(lines, "", fmt.Sprintf("_Skipped %d unparseable modules: %s_", len(result.Skipped), skippedPaths(result.Skipped)))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func markdownLine(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

func skippedPaths(skipped []schema.SkippedFile) string {
	out := make([]string, len(skipped))
	for i, s := range skipped {
		out[i] = s.Path
	}
	return strings.Join(out, ", ")
}
