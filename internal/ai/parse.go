package ai

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// Pre-compiled patterns; compiling per parse is an order of magnitude
// slower than reusing these.
var (
	// ```json\n...\n``` fences, language tag optional, newlines optional.
	codeFenceRegex = regexp.MustCompile("(?s)`{3}(?:json)?\\s*\\n?([\\s\\S]*?)\\n?`{3}")

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	lineCommentRegex   = regexp.MustCompile(`(?m)//.*$`)

	// Greedy, so nested structures are captured whole.
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseResult is the result-style outcome of a JSON parse attempt.
type ParseResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	Context string // Context for error messages
}

// Parse attempts to decode model output as JSON, tolerating the
// formatting quirks language models actually produce.
//
// Strategy sequence:
//  1. Direct JSON parse
//  2. Strip markdown code fences and retry
//  3. Remove trailing commas and // comments and retry
//  4. Extract the first JSON array/object from mixed content and retry
func Parse[T any](text string, opts ...ParseOptions) ParseResult[T] {
	var options ParseOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError[T]("empty input", options.Context)
	}

	if data, err := tryParse[T](trimmed); err == nil {
		return ParseResult[T]{Success: true, Data: data}
	} else {
		slog.Debug("direct JSON parse failed, trying cleanup strategies",
			"error", err.Error(),
			"context", options.Context)
	}

	unfenced := stripCodeFences(trimmed)
	if unfenced != trimmed {
		if data, err := tryParse[T](unfenced); err == nil {
			return ParseResult[T]{Success: true, Data: data}
		}
	}

	cleaned := cleanupJSON(unfenced)
	if data, err := tryParse[T](cleaned); err == nil {
		return ParseResult[T]{Success: true, Data: data}
	}

	if extracted := extractJSON(cleaned); extracted != "" {
		if data, err := tryParse[T](extracted); err == nil {
			return ParseResult[T]{Success: true, Data: data}
		}
	}

	return parseError[T]("all JSON parsing strategies failed", options.Context)
}

func tryParse[T any](text string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(text), &result)
	return result, err
}

// stripCodeFences removes markdown code fences wrapping the payload.
func stripCodeFences(text string) string {
	cleaned := codeFenceRegex.ReplaceAllString(text, "$1")
	if strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.Trim(cleaned, "`")
	}
	return strings.TrimSpace(cleaned)
}

// cleanupJSON fixes trailing commas and // comments. Single quotes are
// left alone: rewriting them would corrupt valid JSON with apostrophes.
func cleanupJSON(text string) string {
	cleaned := trailingCommaRegex.ReplaceAllString(text, "$1")
	cleaned = lineCommentRegex.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// extractJSON pulls the first JSON array or object out of mixed
// content, e.g. prose before or after the payload. The first JSON-like
// character decides which shape to look for, so an array is never
// mis-extracted as its first element.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			return arrayRegex.FindString(trimmed)
		case '{':
			return objectRegex.FindString(trimmed)
		}
	}
	if match := arrayRegex.FindString(text); match != "" {
		return match
	}
	return objectRegex.FindString(text)
}

func parseError[T any](message, context string) ParseResult[T] {
	if context != "" {
		message = context + ": " + message
	}
	return ParseResult[T]{Success: false, Error: message}
}
