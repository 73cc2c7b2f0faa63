package dedup

import (
	"encoding/json"
	"fmt"

	"github.com/scholarsift/scholarsift/internal/types"
)

// ValidationStats summarizes a validated dedup run.
type ValidationStats struct {
	OriginalCount     int     `json:"originalCount"`
	DeduplicatedCount int     `json:"deduplicatedCount"`
	DuplicatesRemoved int     `json:"duplicatesRemoved"`
	ReductionRate     float64 `json:"reductionRate"`
}

// ValidationReport is the post-hoc invariant check over any dedup
// output, used internally and exposed to collaborators for auditing.
type ValidationReport struct {
	IsValid    bool            `json:"isValid"`
	Errors     []string        `json:"errors"`
	Warnings   []string        `json:"warnings"`
	Statistics ValidationStats `json:"statistics"`
}

// Validate checks a dedup output against its input.
//
// A count increase is an error: merging must never produce more records
// than it was given, and a violation indicates a logic defect upstream
// that must never be silently corrected. An empty output from non-empty
// input, or an output the same size as the input (no duplicates found),
// are valid but noteworthy, so they come back as warnings.
func Validate(original, deduplicated []types.ScholarshipRecord) ValidationReport {
	report := ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	originalCount := len(original)
	dedupCount := len(deduplicated)

	if dedupCount > originalCount {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"deduplicated count (%d) exceeds original count (%d): merging must never increase record count",
			dedupCount, originalCount))
	}
	if originalCount > 0 && dedupCount == 0 {
		report.Warnings = append(report.Warnings,
			"deduplicated output is empty while input was not")
	}
	if originalCount > 0 && dedupCount == originalCount {
		report.Warnings = append(report.Warnings,
			"no duplicates found: output count equals input count")
	}

	report.Statistics = ValidationStats{
		OriginalCount:     originalCount,
		DeduplicatedCount: dedupCount,
		DuplicatesRemoved: originalCount - dedupCount,
	}
	if originalCount > 0 {
		report.Statistics.ReductionRate = float64(originalCount-dedupCount) / float64(originalCount)
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

// ValidateJSON shape-checks both raw arguments before validating. A
// non-list argument is an error in the report, not a Go error, so
// auditing callers always get a report back.
func ValidateJSON(original, deduplicated json.RawMessage) ValidationReport {
	report := ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	orig, err := ParseRecordList(original)
	if err != nil {
		report.Errors = append(report.Errors, "original: "+err.Error())
	}
	dedup, err := ParseRecordList(deduplicated)
	if err != nil {
		report.Errors = append(report.Errors, "deduplicated: "+err.Error())
	}
	if len(report.Errors) > 0 {
		return report
	}
	return Validate(orig, dedup)
}
