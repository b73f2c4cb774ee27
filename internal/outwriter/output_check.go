package outwriter

import (
	"fmt"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

// maxViolationsShown caps the failure listing.
const maxViolationsShown = 10

// PrintCheckResult prints the check result in a concise format suitable for CI/CD.
func PrintCheckResult(violations []schema.HotspotRecord, total int, cfg *contract.Config, duration time.Duration) {
	fmtFloat := createFormatter(cfg.Precision)

	fmt.Println("Hotspot Check Results:")
	fmt.Printf("  %-11s %s\n", "Root:", cfg.ScanRoot)
	fmt.Printf("  %-11s %s\n", "Formula:", cfg.Formula)
	fmt.Printf("  %-11s %s\n", "Threshold:", fmtFloat(cfg.MaxHotspot))
	fmt.Println()
	fmt.Printf("Checked %d records in %v\n\n", total, duration.Round(time.Millisecond))

	if len(violations) == 0 {
		fmt.Printf("✅ No record exceeds the hotspot threshold\n")
		return
	}

	fmt.Printf("❌ Hotspot check failed: %d violation(s) found\n", len(violations))
	for i, r := range violations {
		if i == maxViolationsShown {
			fmt.Printf("  ... and %d more\n", len(violations)-i)
			break
		}
		grade := schema.GetGrade(r.MaintainabilityIndex)
		if cfg.UseColors {
			grade = contract.GetColorGrade(r.MaintainabilityIndex)
		}
		fmt.Printf("  - %s [%s] (hotspot: %s > threshold: %s, MI: %s %s, changes: %d)\n",
			r.Path, r.PathType, fmtFloat(r.HotspotIndex), fmtFloat(cfg.MaxHotspot),
			fmtFloat(r.MaintainabilityIndex), grade, r.ChangesCount)
	}
}
