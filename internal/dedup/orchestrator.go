package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scholarsift/scholarsift/internal/types"
)

// Fixed confidence heuristics per strategy; these are not learned.
const (
	confidenceModel = 0.9
	confidenceRules = 0.7
	confidenceEmpty = 1.0
)

// Orchestrator is the engine's entry point: it selects the strategy,
// wraps the output in a uniform result envelope, and runs batches of
// independent lists with per-element failure isolation.
type Orchestrator struct {
	cfg   Config
	rules *RuleClusterer
	model *ModelDeduplicator // nil when no model client is configured
}

// NewOrchestrator wires the strategies together. client may be nil, in
// which case `model` mode errors and `hybrid` goes straight to rules.
func NewOrchestrator(cfg Config, client CompletionClient) (*Orchestrator, error) {
	rules, err := NewRuleClusterer(cfg)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{cfg: cfg, rules: rules}
	if client != nil {
		model, err := NewModelDeduplicator(client, cfg)
		if err != nil {
			return nil, err
		}
		o.model = model
	}
	return o, nil
}

// Dedupe deduplicates one record list with the given method.
//
// `rules` runs the clusterer directly. `model` runs the model path and
// propagates its ModelResponseError with no fallback. `hybrid` (the
// default for an empty method) tries the model path and degrades
// silently to rules on failure, recording method "rules" in the result.
func (o *Orchestrator) Dedupe(ctx context.Context, records []types.ScholarshipRecord, method types.Method) (*types.DedupResult, error) {
	method, err := types.ParseMethod(string(method))
	if err != nil {
		return nil, err
	}

	// Empty input is a trivial success: zero counts, zero time.
	if len(records) == 0 {
		return &types.DedupResult{
			Success:      true,
			Deduplicated: []types.ScholarshipRecord{},
			Method:       method,
			Metadata:     types.ResultMetadata{Confidence: confidenceEmpty},
		}, nil
	}

	startTime := time.Now()
	switch method {
	case types.MethodRules:
		out := o.rules.Cluster(records)
		return o.assemble(out, len(records), types.MethodRules, confidenceRules, startTime), nil

	case types.MethodModel:
		if o.model == nil {
			return nil, &ModelResponseError{Reason: "no model client configured"}
		}
		out, err := o.model.Dedupe(ctx, records)
		if err != nil {
			return nil, err
		}
		return o.assemble(out, len(records), types.MethodModel, confidenceModel, startTime), nil

	case types.MethodHybrid:
		if o.model != nil {
			out, err := o.model.Dedupe(ctx, records)
			if err == nil {
				return o.assemble(out, len(records), types.MethodModel, confidenceModel, startTime), nil
			}
			log.Printf("[DEDUP] model path failed: %v (falling back to rules)", err)
		}
		out := o.rules.Cluster(records)
		return o.assemble(out, len(records), types.MethodRules, confidenceRules, startTime), nil
	}

	return nil, fmt.Errorf("unknown dedup method %q", method)
}

func (o *Orchestrator) assemble(out []types.ScholarshipRecord, originalCount int, method types.Method, confidence float64, startTime time.Time) *types.DedupResult {
	removed := originalCount - len(out)
	rate := 0.0
	if originalCount > 0 {
		rate = float64(removed) / float64(originalCount)
	}
	return &types.DedupResult{
		Success:           true,
		Deduplicated:      out,
		OriginalCount:     originalCount,
		DeduplicatedCount: len(out),
		DuplicatesRemoved: removed,
		Method:            method,
		Metadata: types.ResultMetadata{
			ProcessingTimeMs:  time.Since(startTime).Milliseconds(),
			Confidence:        confidence,
			DeduplicationRate: rate,
		},
	}
}

// ParseRecordList decodes a raw JSON value that must be an array of
// record-shaped objects. Shape violations come back as *InputShapeError
// carrying index -1; batch mode rewrites the index per element.
func ParseRecordList(raw json.RawMessage) ([]types.ScholarshipRecord, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &InputShapeError{Index: -1, Msg: "input is not valid JSON: " + err.Error()}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &InputShapeError{Index: -1, Msg: "input is not a list"}
	}

	var records []types.ScholarshipRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &InputShapeError{Index: -1, Msg: "input records are malformed: " + err.Error()}
	}
	return records, nil
}

// DedupeBatch deduplicates a batch of independent record lists. Each
// element is shape-checked and processed on a bounded worker pool; a
// failure in one element is captured in its slot (success false, zero
// counts, populated error) and never aborts the siblings. Totals are
// aggregated over successful elements only, after all workers finish.
//
// Cancellation stops unstarted elements, which come back as failed
// slots carrying a cancellation error; an element already dispatched
// runs to completion.
func (o *Orchestrator) DedupeBatch(ctx context.Context, elements []json.RawMessage, method types.Method) (*types.BatchResult, error) {
	method, err := types.ParseMethod(string(method))
	if err != nil {
		return nil, err
	}

	results := make([]types.DedupResult, len(elements))

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.BatchConcurrency)
	dispatched := len(elements)
	for i, raw := range elements {
		if ctx.Err() != nil {
			dispatched = i
			break
		}
		i, raw := i, raw
		g.Go(func() error {
			results[i] = o.dedupeElement(ctx, i, raw, method)
			return nil
		})
	}
	_ = g.Wait()

	for i := dispatched; i < len(elements); i++ {
		results[i] = types.DedupResult{
			Success:      false,
			Deduplicated: []types.ScholarshipRecord{},
			Method:       method,
			Error:        fmt.Sprintf("batch element %d: batch cancelled before processing: %v", i, ctx.Err()),
		}
	}

	batch := &types.BatchResult{
		RunID:   uuid.New().String(),
		Results: results,
	}
	for _, r := range results {
		if !r.Success {
			batch.Totals.FailedElements++
			continue
		}
		batch.Totals.SucceededElements++
		batch.Totals.TotalOriginalItems += r.OriginalCount
		batch.Totals.TotalDeduplicatedItems += r.DeduplicatedCount
		batch.Totals.TotalDuplicatesRemoved += r.DuplicatesRemoved
		batch.Totals.TotalProcessingTimeMs += r.Metadata.ProcessingTimeMs
	}
	if batch.Totals.TotalOriginalItems > 0 {
		batch.Totals.OverallDeduplicationRate =
			float64(batch.Totals.TotalDuplicatesRemoved) / float64(batch.Totals.TotalOriginalItems)
	}
	return batch, nil
}

func (o *Orchestrator) dedupeElement(ctx context.Context, index int, raw json.RawMessage, method types.Method) types.DedupResult {
	fail := func(err error) types.DedupResult {
		var shapeErr *InputShapeError
		if errors.As(err, &shapeErr) {
			shapeErr.Index = index
		}
		log.Printf("[DEDUP] batch element %d failed: %v", index, err)
		return types.DedupResult{
			Success:      false,
			Deduplicated: []types.ScholarshipRecord{},
			Method:       method,
			Error:        err.Error(),
		}
	}

	records, err := ParseRecordList(raw)
	if err != nil {
		return fail(err)
	}
	result, err := o.Dedupe(ctx, records, method)
	if err != nil {
		return fail(err)
	}
	return *result
}
