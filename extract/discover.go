package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/pagedoc"
)

// maxDiscoveryChars bounds the markup sample sent for selector discovery.
// The page skeleton matters more than its full text.
const maxDiscoveryChars = 50000

const discoverSystemInstruction = "You are an expert in HTML document structure. " +
	"Given page markup, identify CSS selectors that locate the main article. " +
	"Respond with a JSON object with keys: " +
	`"articleContainer" (selector for the element containing the whole article), ` +
	`"content" (selector for content blocks within the container), ` +
	`"title", "author", "publishDate" (selectors, empty string if absent), ` +
	`"exclude" (array of selectors for ads, related links and other noise within the container). ` +
	"Respond with the JSON object only, no commentary."

// DiscoverSelectors asks the model to propose a selector set for a page.
// The response is parsed tolerantly (fenced blocks and stray text are
// handled) and validated before use.
func (s *Selector) DiscoverSelectors(ctx context.Context, html string) (*pagedoc.SelectorSet, error) {
	sample := html
	if len(sample) > maxDiscoveryChars {
		sample = sample[:maxDiscoveryChars]
	}

	out, err := pagedoc.CallWithRetry(ctx, s.Retry, func(ctx context.Context) (string, error) {
		return s.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             s.Model,
			SystemInstruction: discoverSystemInstruction,
			UserContent:       sample,
		})
	})
	if err != nil {
		return nil, err
	}

	set, err := parseSelectorResponse(out)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// parseSelectorResponse extracts a SelectorSet from a model response,
// tolerating fenced blocks and commentary around the JSON object.
func parseSelectorResponse(raw string) (*pagedoc.SelectorSet, error) {
	raw = strings.TrimSpace(raw)

	var set pagedoc.SelectorSet
	if err := json.Unmarshal([]byte(raw), &set); err == nil {
		return &set, nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end <= start {
		return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "no JSON object in selector response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &set); err != nil {
		return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "malformed selector response: %v", err)
	}
	return &set, nil
}
