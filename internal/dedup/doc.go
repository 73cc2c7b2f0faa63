// Package dedup implements the scholarship record deduplication engine.
//
// # Overview
//
// Scholarship listings scraped from multiple source sites frequently
// describe the same underlying scholarship with differing titles,
// formatting, partial fields, or outright duplicate listings. This
// package recognizes those duplicates and collapses each group into a
// single canonical record without losing information.
//
// # Architecture
//
// The engine has two strategies behind one Orchestrator entry point:
//
//  1. RuleClusterer: deterministic weighted field similarity with a
//     greedy O(n²) merge. No external dependency; always available.
//  2. ModelDeduplicator: one strict-prompt call to the external
//     language-model service, parsing its JSON-array response. Fails
//     fast on any malformed output; no retry.
//
// Strategy selection:
//
//   - rules: clusterer only
//   - model: model only; ModelResponseError propagates to the caller
//   - hybrid (default): model first, silent fallback to rules on
//     failure with method "rules" recorded in the result
//
// # Merge semantics
//
// Records judged duplicates are merged field by field: the
// authoritative side (per the configured domain allow-list) wins when
// authority differs; otherwise the longer value wins for the free-text
// fields and the first-seen value stands elsewhere. The link always
// comes from the authoritative side, absent fields are filled from
// whichever side has data, and pass-through fields the engine does not
// interpret are preserved. The canonical record is always at least as
// complete, per field, as the most complete contributor.
//
// # Concurrency
//
// A dedupe call is synchronous and owns no shared mutable state, so
// concurrent calls are independently safe. Batch mode fans independent
// elements out over a bounded errgroup pool and aggregates totals after
// all workers finish; one failed element never aborts its siblings.
//
// # Usage
//
//	cfg := dedup.DefaultConfig()
//	orch, err := dedup.NewOrchestrator(cfg, client)
//	if err != nil {
//	    return err
//	}
//
//	result, err := orch.Dedupe(ctx, records, types.MethodHybrid)
//	if err != nil {
//	    return err
//	}
//	log.Printf("[DEDUP] %d -> %d records (method=%s)",
//	    result.OriginalCount, result.DeduplicatedCount, result.Method)
//
//	report := dedup.Validate(records, result.Deduplicated)
//	if !report.IsValid {
//	    log.Printf("[DEDUP] invariant violation: %v", report.Errors)
//	}
//
// A hybrid result with method "rules" is a successful degradation:
// log-worthy, not error-worthy. Only input shape problems and validator
// invariant violations should surface to callers as failures.
package dedup
