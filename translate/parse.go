package translate

import (
	"encoding/json"
	"strings"
)

// ParseOutcome classifies how a batch response was recovered.
type ParseOutcome int

// Parse outcomes, from clean to unusable.
const (
	// ParseSuccess: the response parsed strictly and matched the
	// requested item count.
	ParseSuccess ParseOutcome = iota

	// ParsePartial: the response needed repair (fencing stripped, stray
	// text dropped, or a length mismatch padded/truncated).
	ParsePartial

	// ParseFailure: no JSON array could be recovered.
	ParseFailure
)

// ParseResult is the typed result of parsing a batch translation response.
// Items always has length want on success or partial recovery; nil slots
// mean "no usable translation, keep the original".
type ParseResult struct {
	Items   []*string
	Outcome ParseOutcome
}

// ParseBatchResponse parses a model response expected to be a JSON array
// of want strings. Parsing is an explicit two-stage process: a strict
// parse first, then bounded repair heuristics (fenced-block extraction,
// bracket slicing, length normalization). It never guesses beyond that;
// unrecoverable responses report ParseFailure so the caller can fall back
// to original text for the whole chunk.
func ParseBatchResponse(raw string, want int) ParseResult {
	raw = strings.TrimSpace(raw)

	// Stage one: strict parse.
	if items, ok := parseArray(raw); ok {
		return normalize(items, want, ParseSuccess)
	}

	// Stage two: bounded repair. Models love to wrap JSON in a fenced
	// block or follow it with commentary.
	if inner, ok := stripFence(raw); ok {
		if items, ok := parseArray(inner); ok {
			return normalize(items, want, ParsePartial)
		}
	}
	if inner, ok := sliceBrackets(raw); ok {
		if items, ok := parseArray(inner); ok {
			return normalize(items, want, ParsePartial)
		}
	}

	return ParseResult{Outcome: ParseFailure}
}

func parseArray(s string) ([]*string, bool) {
	var items []*string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	return items, true
}

// stripFence extracts the contents of the first fenced code block.
func stripFence(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]
	// Drop an optional language tag on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 && nl < 20 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// sliceBrackets extracts the outermost JSON array by bracket positions.
func sliceBrackets(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// normalize pads a short response with nils and truncates a long one, so
// the result always lines up with the request. A mismatch downgrades the
// outcome to partial: the caller keeps original text for missing slots
// instead of discarding the whole chunk.
func normalize(items []*string, want int, outcome ParseOutcome) ParseResult {
	if len(items) != want {
		outcome = ParsePartial
	}
	for len(items) < want {
		items = append(items, nil)
	}
	if len(items) > want {
		items = items[:want]
	}
	return ParseResult{Items: items, Outcome: outcome}
}
