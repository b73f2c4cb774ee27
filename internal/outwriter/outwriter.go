// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/internal/parquet"
	"github.com/huangsam/debtspot/schema"
	"golang.org/x/term"
)

// WriteResult outputs a scan result, dispatching based on the output format configured.
func WriteResult(result *schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsCSV(w, result.Records, cfg.Columns, fmtFloat)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsMarkdown(w, result, cfg, fmtFloat)
		}, "Wrote markdown")
	case schema.ParquetOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteHotspots(w, parquet.ConvertRecords(result))
		}, "Wrote Parquet")
	case schema.XLSXOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsXLSX(w, result, cfg.Columns)
		}, "Wrote spreadsheet")
	default:
		// Default to human-readable table
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

// GetMaxTablePathWidth calculates the maximum width for paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Type + Grade + MI + Changes + Hotspot with borders/padding
	baseWidth := 60
	if cfg.Columns != schema.BasicColumns {
		baseWidth += 45 // Halstead + CC + LOC + Comments
	}

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
