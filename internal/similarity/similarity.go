// Package similarity provides the pairwise field similarity functions
// and per-record scores the rule-based clusterer is built on. Everything
// here is a pure function over record values; no state, no I/O.
package similarity

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/scholarsift/scholarsift/internal/types"
)

// Weights controls how much each comparable field contributes to the
// weighted aggregate similarity. Only fields present on both records
// contribute their weight to the denominator, so missing data is never
// treated as a match or a mismatch.
type Weights struct {
	Title        float64 `yaml:"title"`
	Organization float64 `yaml:"organization"`
	Amount       float64 `yaml:"amount"`
	Deadline     float64 `yaml:"deadline"`
}

// DefaultWeights returns the standard field weighting.
func DefaultWeights() Weights {
	return Weights{
		Title:        0.4,
		Organization: 0.3,
		Amount:       0.2,
		Deadline:     0.1,
	}
}

// Validate checks that the weights can produce a meaningful score.
func (w Weights) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"title", w.Title},
		{"organization", w.Organization},
		{"amount", w.Amount},
		{"deadline", w.Deadline},
	} {
		if v.value < 0 {
			return fmt.Errorf("%s weight cannot be negative (got %v)", v.name, v.value)
		}
	}
	if w.Title+w.Organization+w.Amount+w.Deadline <= 0 {
		return fmt.Errorf("at least one field weight must be positive")
	}
	return nil
}

// Text computes token-set similarity between two free-text values:
// both sides are lower-cased and whitespace-tokenized, punctuation is
// trimmed from token edges, and the score is |intersection| / |union|.
// Tokens also match when one is a prefix of the other (minimum four
// characters), so "scholars" pairs with "scholarship" the way scraped
// listings actually vary.
//
// Matching runs in two passes: all exact matches resolve first, then
// prefix pairing walks the leftover tokens of both sides in sorted
// order. A prefix pairing can therefore never claim a token another
// token matches exactly, and the score does not depend on map
// iteration order.
func Text(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	matchedA := make(map[string]bool, len(ta))
	takenB := make(map[string]bool, len(tb))
	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			matchedA[tok] = true
			takenB[tok] = true
			intersection++
		}
	}

	candidates := sortedTokens(tb)
	for _, tok := range sortedTokens(ta) {
		if matchedA[tok] {
			continue
		}
		for _, cand := range candidates {
			if takenB[cand] || !prefixMatch(tok, cand) {
				continue
			}
			takenB[cand] = true
			intersection++
			break
		}
	}

	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Amount compares two free-text amount values. The first contiguous run
// of digits (thousands separators ignored) on each side is taken as an
// integer; the score is binary: 1 when the values differ by less than
// 10% of the larger, 0 otherwise. ok is false when either side has no
// parseable digits, which excludes the field from the aggregate.
func Amount(a, b string) (score float64, ok bool) {
	av, aok := parseAmount(a)
	bv, bok := parseAmount(b)
	if !aok || !bok {
		return 0, false
	}

	max := av
	if bv > max {
		max = bv
	}
	if max == 0 {
		// Both zero: identical.
		return 1, true
	}

	diff := av - bv
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) < 0.10*float64(max) {
		return 1, true
	}
	return 0, true
}

// Deadline compares deadlines by exact string equality. Normalizing
// date formats is an upstream collaborator's job, not the engine's.
// ok is false when either side is empty.
func Deadline(a, b string) (score float64, ok bool) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 1, true
	}
	return 0, true
}

// Weighted computes the aggregate similarity between two records over
// the fields comparable on both sides. The result is in [0,1]; a record
// scores exactly 1.0 against itself, and 0 when no fields are
// comparable at all.
func Weighted(a, b *types.ScholarshipRecord, w Weights) float64 {
	var sum, total float64

	if a.Title != "" && b.Title != "" {
		sum += w.Title * Text(a.Title, b.Title)
		total += w.Title
	}
	if a.Organization != "" && b.Organization != "" {
		sum += w.Organization * Text(a.Organization, b.Organization)
		total += w.Organization
	}
	if s, ok := Amount(a.Amount, b.Amount); ok {
		sum += w.Amount * s
		total += w.Amount
	}
	if s, ok := Deadline(a.Deadline, b.Deadline); ok {
		sum += w.Deadline * s
		total += w.Deadline
	}

	if total == 0 {
		return 0
	}
	return sum / total
}

// minPrefixLen guards prefix matching against short-token noise.
const minPrefixLen = 4

func prefixMatch(a, b string) bool {
	return len(a) >= minPrefixLen && len(b) >= minPrefixLen &&
		(strings.HasPrefix(a, b) || strings.HasPrefix(b, a))
}

func sortedTokens(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func tokenize(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

// parseAmount extracts the first contiguous run of digits from a free
// text amount, skipping thousands separators inside the run, so
// "$50,000 per year" parses as 50000.
func parseAmount(s string) (int64, bool) {
	var value int64
	found := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			found = true
			value = value*10 + int64(r-'0')
		case r == ',' && found:
			// thousands separator inside the run
		default:
			if found {
				return value, true
			}
		}
	}
	return value, found
}
