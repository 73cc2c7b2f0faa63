package dedup

import (
	"github.com/scholarsift/scholarsift/internal/similarity"
	"github.com/scholarsift/scholarsift/internal/types"
)

// RuleClusterer is the deterministic deduplication path: O(n²) pairwise
// weighted similarity with a greedy merge. It needs no external service
// and is always available, which makes it both the `rules` strategy and
// the hybrid fallback.
//
// The quadratic scan is fine at per-request batch sizes (tens to low
// hundreds of records). Unbounded corpora would need blocking by
// normalized title prefix before pairwise comparison; that is out of
// scope here.
type RuleClusterer struct {
	cfg       Config
	authority similarity.AuthorityList
}

// NewRuleClusterer creates a rule-based clusterer with the given config.
func NewRuleClusterer(cfg Config) (*RuleClusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RuleClusterer{
		cfg:       cfg,
		authority: similarity.AuthorityList(cfg.AuthorityDomains),
	}, nil
}

// Cluster collapses duplicate records into canonical records, returned
// in first-appearance order. Inputs are never mutated; every output
// record is freshly built.
//
// Records are scanned in original order. Each unprocessed record seeds
// a cluster; later unprocessed records whose similarity to the evolving
// merged base exceeds the threshold are merged in and marked processed.
// Because the base evolves, a third record can join a cluster by
// matching the merged result even if it did not closely match the seed
// alone.
func (c *RuleClusterer) Cluster(records []types.ScholarshipRecord) []types.ScholarshipRecord {
	out := make([]types.ScholarshipRecord, 0, len(records))
	processed := make([]bool, len(records))

	for i := range records {
		if processed[i] {
			continue
		}
		base := records[i].Clone()

		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}
			score := similarity.Weighted(&base, &records[j], c.cfg.Weights)
			if score > c.cfg.Threshold {
				base = c.merge(base, records[j])
				processed[j] = true
			}
		}

		processed[i] = true
		out = append(out, base)
	}
	return out
}

// freeTextFields get the longer-wins tiebreak; for everything else the
// base value stands when neither side is authoritative.
var freeTextFields = map[string]bool{
	types.FieldDescription:  true,
	types.FieldEligibility:  true,
	types.FieldRequirements: true,
}

// merge combines two records judged duplicates into one canonical
// record. Per field: the authoritative side wins when authority
// differs; with equal authority, the longer value wins for free-text
// fields and the base value stands otherwise; the link always comes
// from the authoritative side regardless of length; absent values are
// filled from whichever side has them. Pass-through fields come from
// the dominant side, with the other side filling any keys it lacks.
//
// "Longer string wins" is a proxy for detail, not a correctness
// guarantee: boilerplate-padded scrapes can beat a cleaner value.
func (c *RuleClusterer) merge(base, candidate types.ScholarshipRecord) types.ScholarshipRecord {
	baseAuth := c.authority.Match(&base)
	candAuth := c.authority.Match(&candidate)

	dominant, other := base, candidate
	if candAuth && !baseAuth {
		dominant, other = candidate, base
	}

	merged := dominant.Clone()
	for _, f := range types.CanonicalFields {
		dv := dominant.Field(f)
		ov := other.Field(f)
		switch {
		case dv == "":
			merged.SetField(f, ov)
		case ov == "":
			// dominant value stands
		case f == types.FieldLink:
			// already the authoritative side's link
		case baseAuth == candAuth && freeTextFields[f] && len(ov) > len(dv):
			merged.SetField(f, ov)
		}
	}

	if merged.Source == "" {
		merged.Source = other.Source
	}

	for k, v := range other.Extra {
		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(other.Extra))
		}
		if _, exists := merged.Extra[k]; !exists {
			merged.Extra[k] = v
		}
	}
	return merged
}
