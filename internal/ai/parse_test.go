package ai

import (
	"testing"
)

type testRecord struct {
	Title  string `json:"title"`
	Amount string `json:"amount"`
}

func TestParseDirectJSON(t *testing.T) {
	result := Parse[testRecord](`{"title": "Gates Millennium Scholarship", "amount": "$50,000"}`)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if result.Data.Title != "Gates Millennium Scholarship" {
		t.Errorf("Title = %q", result.Data.Title)
	}
}

func TestParseArray(t *testing.T) {
	result := Parse[[]testRecord](`[{"title": "A"}, {"title": "B"}]`)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if len(result.Data) != 2 || result.Data[1].Title != "B" {
		t.Errorf("Data = %+v", result.Data)
	}
}

func TestParseCodeFences(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n{\"title\": \"A\"}\n```"},
		{"bare fence", "```\n{\"title\": \"A\"}\n```"},
		{"fence without newlines", "```json{\"title\": \"A\"}```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse[testRecord](tt.text)
			if !result.Success {
				t.Fatalf("parse failed: %s", result.Error)
			}
			if result.Data.Title != "A" {
				t.Errorf("Title = %q", result.Data.Title)
			}
		})
	}
}

func TestParseCleanup(t *testing.T) {
	t.Run("trailing comma", func(t *testing.T) {
		result := Parse[[]testRecord](`[{"title": "A"},]`)
		if !result.Success {
			t.Fatalf("parse failed: %s", result.Error)
		}
		if len(result.Data) != 1 {
			t.Errorf("Data = %+v", result.Data)
		}
	})

	t.Run("line comments", func(t *testing.T) {
		result := Parse[testRecord]("{\n\"title\": \"A\" // the canonical one\n}")
		if !result.Success {
			t.Fatalf("parse failed: %s", result.Error)
		}
		if result.Data.Title != "A" {
			t.Errorf("Title = %q", result.Data.Title)
		}
	})
}

func TestParseMixedContent(t *testing.T) {
	t.Run("prose around array", func(t *testing.T) {
		text := `Here are the deduplicated records:

[{"title": "A"}, {"title": "B"}]

Let me know if you need anything else.`
		result := Parse[[]testRecord](text)
		if !result.Success {
			t.Fatalf("parse failed: %s", result.Error)
		}
		if len(result.Data) != 2 {
			t.Errorf("Data = %+v", result.Data)
		}
	})

	t.Run("array not mis-extracted as object", func(t *testing.T) {
		result := Parse[[]testRecord](`[{"title": "A"}]`)
		if !result.Success {
			t.Fatalf("parse failed: %s", result.Error)
		}
		if len(result.Data) != 1 {
			t.Errorf("Data = %+v, want one-element slice", result.Data)
		}
	})
}

func TestParseFailures(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		result := Parse[testRecord]("")
		if result.Success {
			t.Fatal("expected failure")
		}
		if result.Error != "empty input" {
			t.Errorf("Error = %q", result.Error)
		}
	})

	t.Run("no JSON at all", func(t *testing.T) {
		result := Parse[testRecord]("I am unable to help with that.")
		if result.Success {
			t.Fatal("expected failure")
		}
	})

	t.Run("context prefixes the error", func(t *testing.T) {
		result := Parse[testRecord]("", ParseOptions{Context: "dedupe response"})
		if result.Success {
			t.Fatal("expected failure")
		}
		if result.Error != "dedupe response: empty input" {
			t.Errorf("Error = %q", result.Error)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		result := Parse[[]testRecord](`{"title": "A"}`)
		if result.Success {
			t.Fatal("expected failure for object into slice")
		}
	})
}
