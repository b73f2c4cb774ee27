package schema

// EnrichedRecord adds presentation data to a HotspotRecord.
type EnrichedRecord struct {
	Rank  int    `json:"rank"`
	Grade string `json:"grade"`
	HotspotRecord
}

// GetGrade returns the letter grade of a maintainability index.
// The bands follow the usual Visual Studio thresholds.
func GetGrade(mi float64) string {
	switch {
	case mi >= 20:
		return "A"
	case mi >= 10:
		return "B"
	default:
		return "C"
	}
}

// EnrichRecords adds rank and grade to a list of hotspot records.
func EnrichRecords(records []HotspotRecord) []EnrichedRecord {
	output := make([]EnrichedRecord, len(records))
	for i, r := range records {
		output[i] = EnrichedRecord{
			Rank:          i + 1,
			Grade:         GetGrade(r.MaintainabilityIndex),
			HotspotRecord: r,
		}
	}
	return output
}
