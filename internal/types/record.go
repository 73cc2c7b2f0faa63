// Package types defines the core data model for the scholarship
// deduplication engine: the record shape consumed by every component
// and the result envelopes returned to callers.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CanonicalFields is the fixed field set used for completeness scoring
// and the merge policy. Order matters: merge walks fields in this order.
var CanonicalFields = []string{
	FieldTitle,
	FieldOrganization,
	FieldAmount,
	FieldDeadline,
	FieldDescription,
	FieldEligibility,
	FieldRequirements,
	FieldLink,
}

// Canonical field names. Kept as constants so the similarity and merge
// code never drifts from the JSON wire names.
const (
	FieldTitle        = "title"
	FieldOrganization = "organization"
	FieldAmount       = "amount"
	FieldDeadline     = "deadline"
	FieldDescription  = "description"
	FieldEligibility  = "eligibility"
	FieldRequirements = "requirements"
	FieldLink         = "link"
	FieldSource       = "source"
)

// ScholarshipRecord is the unit of deduplication. Every field is
// optional: records arrive from scrapers with arbitrary gaps, and all
// comparisons must tolerate missing values on either side.
//
// Fields the engine does not interpret (AI-added scores, scraper
// metadata, anything else upstream attaches) are captured in Extra and
// preserved verbatim across merges and JSON round trips.
type ScholarshipRecord struct {
	Title        string
	Organization string
	Amount       string // free text, e.g. "$50,000"
	Deadline     string // ISO date or free text; the engine never parses it
	Description  string
	Eligibility  string
	Requirements string
	Link         string
	Source       string

	// Extra holds pass-through fields not interpreted by the engine.
	Extra map[string]any
}

// Field returns the value of a named canonical field (or source).
// Unknown names return "".
func (r *ScholarshipRecord) Field(name string) string {
	switch name {
	case FieldTitle:
		return r.Title
	case FieldOrganization:
		return r.Organization
	case FieldAmount:
		return r.Amount
	case FieldDeadline:
		return r.Deadline
	case FieldDescription:
		return r.Description
	case FieldEligibility:
		return r.Eligibility
	case FieldRequirements:
		return r.Requirements
	case FieldLink:
		return r.Link
	case FieldSource:
		return r.Source
	}
	return ""
}

// SetField sets the value of a named canonical field (or source).
// Unknown names are ignored.
func (r *ScholarshipRecord) SetField(name, value string) {
	switch name {
	case FieldTitle:
		r.Title = value
	case FieldOrganization:
		r.Organization = value
	case FieldAmount:
		r.Amount = value
	case FieldDeadline:
		r.Deadline = value
	case FieldDescription:
		r.Description = value
	case FieldEligibility:
		r.Eligibility = value
	case FieldRequirements:
		r.Requirements = value
	case FieldLink:
		r.Link = value
	case FieldSource:
		r.Source = value
	}
}

// Clone returns a deep copy. The engine never mutates caller records;
// merged output is always built from clones.
func (r *ScholarshipRecord) Clone() ScholarshipRecord {
	out := *r
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// IsEmpty reports whether the record carries no canonical data at all.
func (r *ScholarshipRecord) IsEmpty() bool {
	for _, f := range CanonicalFields {
		if strings.TrimSpace(r.Field(f)) != "" {
			return false
		}
	}
	return r.Source == "" && len(r.Extra) == 0
}

// UnmarshalJSON decodes a record from an arbitrary JSON object. Known
// fields are lifted into their struct slots; "provider" is accepted as
// an alias for organization; everything else lands in Extra untouched.
func (r *ScholarshipRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ScholarshipRecord{}
	var provider string
	for key, val := range raw {
		s, isString := val.(string)
		switch {
		case isString && isKnownField(key):
			r.SetField(key, s)
		case isString && key == "provider":
			provider = s
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[key] = val
		}
	}

	// "provider" fills organization only when the record has no
	// organization of its own; otherwise it stays a pass-through key.
	if provider != "" {
		if r.Organization == "" {
			r.Organization = provider
		} else {
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra["provider"] = provider
		}
	}
	if len(r.Extra) == 0 {
		r.Extra = nil
	}
	return nil
}

// wireFields is the full stored field set: the canonical fields plus
// source. Kept separate so no caller ever appends to CanonicalFields.
var wireFields = append(append(make([]string, 0, len(CanonicalFields)+1), CanonicalFields...), FieldSource)

// MarshalJSON emits the known fields that hold values plus every
// pass-through field. Known fields win on key collisions.
func (r ScholarshipRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(wireFields))
	for k, v := range r.Extra {
		out[k] = v
	}
	for _, f := range wireFields {
		if v := r.Field(f); v != "" {
			out[f] = v
		}
	}
	return json.Marshal(out)
}

func isKnownField(key string) bool {
	switch key {
	case FieldTitle, FieldOrganization, FieldAmount, FieldDeadline,
		FieldDescription, FieldEligibility, FieldRequirements,
		FieldLink, FieldSource:
		return true
	}
	return false
}

// Method selects the deduplication strategy.
type Method string

const (
	// MethodRules runs the deterministic clusterer only.
	MethodRules Method = "rules"

	// MethodModel runs the model-assisted path only; its failures
	// propagate to the caller.
	MethodModel Method = "model"

	// MethodHybrid tries the model path and falls back to rules on any
	// model failure. This is the default.
	MethodHybrid Method = "hybrid"
)

// ParseMethod validates a method string, defaulting empty to hybrid.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodRules, MethodModel, MethodHybrid:
		return Method(s), nil
	case "":
		return MethodHybrid, nil
	}
	return "", fmt.Errorf("unknown dedup method %q (want rules, model, or hybrid)", s)
}
