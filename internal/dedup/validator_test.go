package dedup

import (
	"encoding/json"
	"testing"

	"github.com/scholarsift/scholarsift/internal/types"
)

func recordsOf(titles ...string) []types.ScholarshipRecord {
	out := make([]types.ScholarshipRecord, len(titles))
	for i, title := range titles {
		out[i] = types.ScholarshipRecord{Title: title}
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		original      []types.ScholarshipRecord
		deduplicated  []types.ScholarshipRecord
		wantValid     bool
		wantErrors    int
		wantWarnings  int
		wantReduction float64
	}{
		{
			name:          "normal reduction",
			original:      recordsOf("A", "A'", "B", "C"),
			deduplicated:  recordsOf("A", "B", "C"),
			wantValid:     true,
			wantReduction: 0.25,
		},
		{
			name:         "count increase is an error",
			original:     recordsOf("A"),
			deduplicated: recordsOf("A", "B"),
			wantValid:    false,
			wantErrors:   1,
		},
		{
			name:         "no duplicates found warns",
			original:     recordsOf("A", "B"),
			deduplicated: recordsOf("A", "B"),
			wantValid:    true,
			wantWarnings: 1,
		},
		{
			name:          "empty output from non-empty input warns",
			original:      recordsOf("A", "B"),
			deduplicated:  nil,
			wantValid:     true,
			wantWarnings:  1,
			wantReduction: 1.0,
		},
		{
			name:         "both empty",
			original:     nil,
			deduplicated: nil,
			wantValid:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.original, tt.deduplicated)
			if report.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", report.IsValid, tt.wantValid, report.Errors)
			}
			if len(report.Errors) != tt.wantErrors {
				t.Errorf("Errors = %v, want %d", report.Errors, tt.wantErrors)
			}
			if len(report.Warnings) != tt.wantWarnings {
				t.Errorf("Warnings = %v, want %d", report.Warnings, tt.wantWarnings)
			}
			if report.Statistics.OriginalCount != len(tt.original) {
				t.Errorf("OriginalCount = %d, want %d", report.Statistics.OriginalCount, len(tt.original))
			}
			if report.Statistics.DeduplicatedCount != len(tt.deduplicated) {
				t.Errorf("DeduplicatedCount = %d, want %d", report.Statistics.DeduplicatedCount, len(tt.deduplicated))
			}
			if report.Statistics.ReductionRate != tt.wantReduction {
				t.Errorf("ReductionRate = %v, want %v", report.Statistics.ReductionRate, tt.wantReduction)
			}
		})
	}
}

func TestValidateReportMarshalsCleanly(t *testing.T) {
	report := Validate(nil, nil)
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Empty slices must serialize as [], not null, for API consumers.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["errors"].([]any); !ok {
		t.Errorf("errors serialized as %T, want JSON array", raw["errors"])
	}
	if _, ok := raw["warnings"].([]any); !ok {
		t.Errorf("warnings serialized as %T, want JSON array", raw["warnings"])
	}
}

func TestValidateJSON(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		report := ValidateJSON(
			json.RawMessage(`[{"title":"A"},{"title":"A"}]`),
			json.RawMessage(`[{"title":"A"}]`),
		)
		if !report.IsValid {
			t.Errorf("IsValid = false, errors: %v", report.Errors)
		}
		if report.Statistics.DuplicatesRemoved != 1 {
			t.Errorf("DuplicatesRemoved = %d, want 1", report.Statistics.DuplicatesRemoved)
		}
	})

	t.Run("non-list original reported in the report", func(t *testing.T) {
		report := ValidateJSON(
			json.RawMessage(`{"title":"A"}`),
			json.RawMessage(`[]`),
		)
		if report.IsValid {
			t.Error("IsValid = true, want false")
		}
		if len(report.Errors) != 1 {
			t.Fatalf("Errors = %v, want 1", report.Errors)
		}
		if got := report.Errors[0]; got != "original: input is not a list" {
			t.Errorf("Errors[0] = %q", got)
		}
	})

	t.Run("both arguments malformed", func(t *testing.T) {
		report := ValidateJSON(
			json.RawMessage(`{broken`),
			json.RawMessage(`42`),
		)
		if report.IsValid || len(report.Errors) != 2 {
			t.Errorf("report = %+v, want two errors", report)
		}
	})
}
