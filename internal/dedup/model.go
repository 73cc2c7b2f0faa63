package dedup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scholarsift/scholarsift/internal/ai"
	"github.com/scholarsift/scholarsift/internal/types"
)

// CompletionClient is the model-service boundary: one blocking text
// completion per call. Satisfied by ai.Client; tests substitute fakes.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ModelDeduplicator formats the full record batch into a strict prompt
// for the model service and parses the JSON-array response back into
// records. Any deviation from the expected shape is a
// ModelResponseError; there is no retry here, by design.
type ModelDeduplicator struct {
	client CompletionClient
	cfg    Config
}

// NewModelDeduplicator creates the model-assisted path.
func NewModelDeduplicator(client CompletionClient, cfg Config) (*ModelDeduplicator, error) {
	if client == nil {
		return nil, fmt.Errorf("completion client cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &ModelDeduplicator{client: client, cfg: cfg}, nil
}

// Dedupe asks the model to merge duplicates in one call. The returned
// records are freshly decoded; the input is never touched. Callers must
// not trust the array length or field completeness without validating.
func (d *ModelDeduplicator) Dedupe(ctx context.Context, records []types.ScholarshipRecord) ([]types.ScholarshipRecord, error) {
	if len(records) == 0 {
		return []types.ScholarshipRecord{}, nil
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, &ModelResponseError{Reason: "failed to serialize records", Err: err}
	}

	// Roughly 300 tokens per surviving record plus overhead.
	maxTokens := len(records)*300 + 500
	if maxTokens < 1000 {
		maxTokens = 1000
	}
	if maxTokens > 8000 {
		maxTokens = 8000
	}

	responseText, err := d.client.Complete(ctx, buildDedupePrompt(string(payload)), maxTokens)
	if err != nil {
		return nil, &ModelResponseError{Reason: "model call failed", Err: err}
	}

	return parseDedupeResponse(responseText)
}

// parseDedupeResponse decodes the model output, distinguishing the
// failure modes the taxonomy names: non-JSON, non-array, and array
// elements that are not record-shaped objects.
func parseDedupeResponse(responseText string) ([]types.ScholarshipRecord, error) {
	parsed := ai.Parse[any](responseText, ai.ParseOptions{Context: "dedupe response"})
	if !parsed.Success {
		return nil, &ModelResponseError{Reason: "response is not valid JSON: " + parsed.Error}
	}

	elements, ok := parsed.Data.([]any)
	if !ok {
		return nil, &ModelResponseError{Reason: "response is not a JSON array"}
	}
	for i, el := range elements {
		if _, ok := el.(map[string]any); !ok {
			return nil, &ModelResponseError{Reason: fmt.Sprintf("record %d in response is not an object", i)}
		}
	}

	normalized, err := json.Marshal(elements)
	if err != nil {
		return nil, &ModelResponseError{Reason: "failed to normalize response", Err: err}
	}
	out := []types.ScholarshipRecord{}
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, &ModelResponseError{Reason: "response records are malformed", Err: err}
	}
	return out, nil
}

// buildDedupePrompt builds the strict instruction plus serialized
// record array sent to the model service.
func buildDedupePrompt(recordsJSON string) string {
	return fmt.Sprintf(`You are deduplicating scholarship listings scraped from multiple sources.

SCHOLARSHIP RECORDS:
%s

TASK:
Identify records that describe the SAME underlying scholarship and merge each group into a single record.

IMPORTANT GUIDELINES:
1. Consider SEMANTIC SIMILARITY, not just exact string matching
2. The same scholarship may appear with differing titles, formatting, or partial fields across source sites
3. Matching organization plus similar title strongly suggests the same scholarship
4. Similar award amounts and identical deadlines support a match
5. When merging, prefer the most complete value for every field; never drop information one copy had
6. When merging, prefer a link from an authoritative domain (educational, governmental, or a well-known scholarship directory)
7. Keep records that describe different scholarships, even from the same organization
8. Preserve any fields you do not recognize exactly as they appear

EXAMPLES OF DUPLICATES:
- "Gates Millennium Scholarship" from "Bill & Melinda Gates Foundation" vs "Gates Millennium Scholars Program" from "Gates Foundation"
- "$50,000" vs "$50000" with the same deadline

EXAMPLES OF NON-DUPLICATES:
- Two different award programs run by the same foundation
- Scholarships with the same generic title ("Merit Scholarship") from different organizations

OUTPUT FORMAT:
A JSON array of scholarship records with the same field shape as the input.

IMPORTANT: Respond with ONLY the raw JSON array. Do NOT wrap it in markdown code fences and do NOT add commentary.`, recordsJSON)
}
