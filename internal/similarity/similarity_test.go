package similarity

import (
	"testing"

	"github.com/scholarsift/scholarsift/internal/types"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "identical strings",
			a:    "Gates Millennium Scholarship",
			b:    "Gates Millennium Scholarship",
			want: 1.0,
		},
		{
			name: "case and whitespace insensitive",
			a:    "  GATES   Millennium  ",
			b:    "gates millennium",
			want: 1.0,
		},
		{
			name: "disjoint token sets",
			a:    "National Merit Scholarship",
			b:    "Fulbright Grant",
			want: 0.0,
		},
		{
			name: "partial overlap with prefix variant",
			a:    "Gates Millennium Scholarship",
			b:    "Gates Millennium Scholars Program",
			want: 0.75, // gates, millennium, scholars~scholarship over a 4-token union
		},
		{
			name: "punctuation trimmed from token edges",
			a:    "Scholarship.",
			b:    "scholarship",
			want: 1.0,
		},
		{
			name: "empty side",
			a:    "",
			b:    "anything",
			want: 0.0,
		},
		{
			name: "short tokens never prefix match",
			a:    "an award",
			b:    "another grant",
			want: 0.0, // "an" must not match "another"
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.a, tt.b); !approxEqual(got, tt.want) {
				t.Errorf("Text(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTextStableOnPrefixChains(t *testing.T) {
	// Token sets that chain on a shared prefix used to score differently
	// from run to run when a prefix pairing claimed the token another
	// token matched exactly. The exact-first two-pass matching must give
	// one score, every run.
	for i := 0; i < 200; i++ {
		got := Text("Engineering Engineer Award", "Engineering Engineers Award")
		if got != 1.0 {
			t.Fatalf("run %d: Text = %v, want 1.0 on every run", i, got)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		want     float64
		wantOK   bool
	}{
		{"same value different formatting", "$50,000", "$50000", 1, true},
		{"within ten percent", "$100", "109 dollars", 1, true},
		{"outside ten percent", "$100", "$112", 0, true},
		{"clearly different", "$2,500", "$50,000", 0, true},
		{"left unparseable", "TBD", "$5,000", 0, false},
		{"right unparseable", "$5,000", "varies", 0, false},
		{"both unparseable", "full ride", "varies", 0, false},
		{"digits embedded in text", "up to $10,000 per year", "award of 10000", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Amount(tt.a, tt.b)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Amount(%q, %q) = (%v, %v), want (%v, %v)",
					tt.a, tt.b, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDeadline(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		want   float64
		wantOK bool
	}{
		{"exact match", "2024-01-15", "2024-01-15", 1, true},
		{"different dates", "2024-01-15", "2024-02-01", 0, true},
		{"no normalization across formats", "2024-01-15", "January 15, 2024", 0, true},
		{"left empty", "", "2024-01-15", 0, false},
		{"both empty", "", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Deadline(tt.a, tt.b)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Deadline(%q, %q) = (%v, %v), want (%v, %v)",
					tt.a, tt.b, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWeightedReflexivity(t *testing.T) {
	r := types.ScholarshipRecord{
		Title:        "Gates Millennium Scholarship",
		Organization: "Bill & Melinda Gates Foundation",
		Amount:       "$50,000",
		Deadline:     "2024-01-15",
	}
	if got := Weighted(&r, &r, DefaultWeights()); got != 1.0 {
		t.Errorf("Weighted(r, r) = %v, want exactly 1.0", got)
	}
}

func TestWeighted(t *testing.T) {
	w := DefaultWeights()

	t.Run("no comparable fields scores zero", func(t *testing.T) {
		a := types.ScholarshipRecord{Title: "Gates Millennium Scholarship"}
		b := types.ScholarshipRecord{Organization: "Gates Foundation"}
		if got := Weighted(&a, &b, w); got != 0 {
			t.Errorf("Weighted = %v, want 0 when no fields overlap", got)
		}
	})

	t.Run("missing fields drop out of the denominator", func(t *testing.T) {
		a := types.ScholarshipRecord{Title: "Gates Millennium Scholarship", Deadline: "2024-01-15"}
		b := types.ScholarshipRecord{Title: "Gates Millennium Scholarship", Deadline: "2024-01-15"}
		// Only title and deadline comparable; both match, so the score is 1.
		if got := Weighted(&a, &b, w); !approxEqual(got, 1.0) {
			t.Errorf("Weighted = %v, want 1.0", got)
		}
	})

	t.Run("near duplicates exceed the default threshold", func(t *testing.T) {
		a := types.ScholarshipRecord{
			Title:        "Gates Millennium Scholarship",
			Organization: "Bill & Melinda Gates Foundation",
			Amount:       "$50,000",
			Deadline:     "2024-01-15",
		}
		b := types.ScholarshipRecord{
			Title:        "Gates Millennium Scholars Program",
			Organization: "Gates Foundation",
			Amount:       "$50000",
			Deadline:     "2024-01-15",
		}
		if got := Weighted(&a, &b, w); got <= 0.7 {
			t.Errorf("Weighted = %v, want > 0.7 for near-duplicate records", got)
		}
	})

	t.Run("unrelated records score low", func(t *testing.T) {
		a := types.ScholarshipRecord{
			Title:        "Gates Millennium Scholarship",
			Organization: "Bill & Melinda Gates Foundation",
			Amount:       "$50,000",
			Deadline:     "2024-01-15",
		}
		b := types.ScholarshipRecord{
			Title:        "National Merit Scholarship",
			Organization: "National Merit Scholarship Corporation",
			Amount:       "$2,500",
			Deadline:     "2024-02-01",
		}
		if got := Weighted(&a, &b, w); got >= 0.3 {
			t.Errorf("Weighted = %v, want < 0.3 for unrelated records", got)
		}
	})
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name   string
		record types.ScholarshipRecord
		want   float64
	}{
		{"empty record", types.ScholarshipRecord{}, 0},
		{
			"two of eight fields",
			types.ScholarshipRecord{Title: "A", Amount: "$1,000"},
			0.25,
		},
		{
			"all canonical fields",
			types.ScholarshipRecord{
				Title:        "A",
				Organization: "B",
				Amount:       "$1",
				Deadline:     "2024-01-01",
				Description:  "d",
				Eligibility:  "e",
				Requirements: "r",
				Link:         "https://example.edu",
			},
			1.0,
		},
		{
			"whitespace does not count as data",
			types.ScholarshipRecord{Title: "   ", Amount: "$1,000"},
			0.125,
		},
		{
			"source is not a canonical field",
			types.ScholarshipRecord{Source: "fastweb.com"},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Completeness(&tt.record); !approxEqual(got, tt.want) {
				t.Errorf("Completeness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorityListMatch(t *testing.T) {
	list := DefaultAuthorityList()

	tests := []struct {
		name   string
		record types.ScholarshipRecord
		want   bool
	}{
		{"edu link", types.ScholarshipRecord{Link: "https://financialaid.harvard.edu/apply"}, true},
		{"gov link", types.ScholarshipRecord{Link: "https://studentaid.gov/grants"}, true},
		{"directory link with subdomain", types.ScholarshipRecord{Link: "https://www.fastweb.com/scholarship/123"}, true},
		{"schemeless link", types.ScholarshipRecord{Link: "www.scholarships.com/listing"}, true},
		{"authoritative source name", types.ScholarshipRecord{Source: "collegeboard.org"}, true},
		{"unknown domain", types.ScholarshipRecord{Link: "https://random-blog.example.com/scholarships"}, false},
		{"lookalike domain is not a suffix match", types.ScholarshipRecord{Link: "https://notfastweb.com/x"}, false},
		{"empty record", types.ScholarshipRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Match(&tt.record); got != tt.want {
				t.Errorf("Match(%+v) = %v, want %v", tt.record, got, tt.want)
			}
		})
	}
}

func approxEqual(a, b float64) bool {
	const eps = 1e-9
	diff := a - b
	return diff < eps && diff > -eps
}
