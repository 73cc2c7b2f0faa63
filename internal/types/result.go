package types

import "fmt"

// ResultMetadata carries the fixed heuristics attached to every result.
type ResultMetadata struct {
	// ProcessingTimeMs is wall-clock time for this dedup call.
	ProcessingTimeMs int64 `json:"processingTimeMs"`

	// Confidence is a fixed heuristic, not a learned score:
	// 0.9 when the model path produced the result, 0.7 for rules,
	// 1.0 for trivially-successful empty input.
	Confidence float64 `json:"confidence"`

	// DeduplicationRate is duplicatesRemoved / originalCount.
	DeduplicationRate float64 `json:"deduplicationRate"`
}

// DedupResult is the orchestrator's output envelope. It is created
// fresh per call and never persisted by the engine.
type DedupResult struct {
	Success           bool                `json:"success"`
	Deduplicated      []ScholarshipRecord `json:"deduplicated"`
	OriginalCount     int                 `json:"originalCount"`
	DeduplicatedCount int                 `json:"deduplicatedCount"`
	DuplicatesRemoved int                 `json:"duplicatesRemoved"`

	// Method is the strategy that actually ran, which differs from the
	// requested strategy when hybrid falls back to rules.
	Method Method `json:"method"`

	// Error is populated only on per-batch-element failures.
	Error string `json:"error,omitempty"`

	Metadata ResultMetadata `json:"metadata"`
}

// Validate checks the internal consistency of a result envelope.
func (r *DedupResult) Validate() error {
	if r.Metadata.Confidence < 0.0 || r.Metadata.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0 (got %.2f)", r.Metadata.Confidence)
	}
	if r.OriginalCount < 0 {
		return fmt.Errorf("original count cannot be negative (got %d)", r.OriginalCount)
	}
	if r.Success {
		if r.DeduplicatedCount != len(r.Deduplicated) {
			return fmt.Errorf("deduplicatedCount (%d) does not match deduplicated length (%d)",
				r.DeduplicatedCount, len(r.Deduplicated))
		}
		if r.OriginalCount != r.DeduplicatedCount+r.DuplicatesRemoved {
			return fmt.Errorf("originalCount (%d) does not equal deduplicatedCount (%d) + duplicatesRemoved (%d)",
				r.OriginalCount, r.DeduplicatedCount, r.DuplicatesRemoved)
		}
	} else if r.Error == "" {
		return fmt.Errorf("failed result must carry an error message")
	}
	return nil
}

// BatchTotals aggregates statistics across the successful elements of a
// batch run. Failed elements contribute nothing.
type BatchTotals struct {
	TotalOriginalItems       int     `json:"totalOriginalItems"`
	TotalDeduplicatedItems   int     `json:"totalDeduplicatedItems"`
	TotalDuplicatesRemoved   int     `json:"totalDuplicatesRemoved"`
	OverallDeduplicationRate float64 `json:"overallDeduplicationRate"`
	TotalProcessingTimeMs    int64   `json:"totalProcessingTimeMs"`
	SucceededElements        int     `json:"succeededElements"`
	FailedElements           int     `json:"failedElements"`
}

// BatchResult is the envelope for batch mode: one DedupResult per input
// element, in input order, plus aggregate totals.
type BatchResult struct {
	RunID   string        `json:"runId"`
	Results []DedupResult `json:"results"`
	Totals  BatchTotals   `json:"totals"`
}
