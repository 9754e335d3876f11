package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/bloom"
	"golang.org/x/sync/errgroup"
)

// Full-extraction sizing. Pages above chunkThreshold are split into
// htmlChunkSize pieces at tag boundaries and extracted chunk by chunk.
const (
	chunkThreshold = 100000
	htmlChunkSize  = 60000

	// Concurrent chunk extraction fan-out. Results are merged in input
	// order, so concurrency does not affect output ordering.
	chunkConcurrency = 3
)

const fullExtractSystemInstruction = "You are a content extraction system. " +
	"Extract the main article content from the HTML, skipping navigation, ads, comments and boilerplate. " +
	"Respond with a JSON object with keys: " +
	`"title", "author", "publishDate" (strings, empty if absent), ` +
	`"content": an array of items, each {"type": one of ` +
	`"paragraph"|"heading"|"list"|"image"|"table"|"code"|"quote"|"separator", ` +
	`"text" (for paragraph/heading/code/quote), "level" (heading), ` +
	`"items" and "ordered" (list), "src"/"alt"/"caption" (image), ` +
	`"headers"/"rows" (table), "language" (code)}. ` +
	"Copy text verbatim, never paraphrase. Respond with the JSON object only."

var scriptStyleRe = regexp.MustCompile(`(?is)<(script|style|noscript)\b.*?</\s*(script|style|noscript)\s*>`)

// FullExtract performs AI full-document extraction: the model reads the
// markup itself and emits the content model directly. Oversized pages are
// chunked at tag boundaries; duplicated blocks from overlapping chunk
// results are dropped via Bloom fingerprints.
func (s *Selector) FullExtract(ctx context.Context, html string) (*pagedoc.ExtractionResult, error) {
	cleaned := scriptStyleRe.ReplaceAllString(html, "")

	if len(cleaned) <= chunkThreshold {
		return s.fullExtractOne(ctx, cleaned)
	}

	parts := splitHTML(cleaned, htmlChunkSize)
	results := make([]*pagedoc.ExtractionResult, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkConcurrency)
	for i, part := range parts {
		g.Go(func() error {
			r, err := s.fullExtractOne(gctx, part)
			if err != nil {
				if pagedoc.IsAuthError(err) {
					return err
				}
				// A failed middle chunk costs its content, not the run.
				s.log().Warn("chunk extraction failed", "chunk", i, "error", err)
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, seen := mergeChunkResults(results)
	if merged == nil {
		return nil, pagedoc.Errorf(pagedoc.EEMPTY, "full extraction produced no content")
	}
	s.log().Debug("chunk results merged",
		"chunks", len(parts),
		"items", len(merged.Content),
		"unique_fingerprints", seen.EstimatedCount(),
	)
	return merged, nil
}

func (s *Selector) fullExtractOne(ctx context.Context, html string) (*pagedoc.ExtractionResult, error) {
	out, err := pagedoc.CallWithRetry(ctx, s.Retry, func(ctx context.Context) (string, error) {
		return s.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             s.Model,
			SystemInstruction: fullExtractSystemInstruction,
			UserContent:       html,
		})
	})
	if err != nil {
		return nil, err
	}

	result, err := parseExtractionResponse(out)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// parseExtractionResponse decodes a model extraction response, tolerating
// fenced blocks and commentary around the JSON object.
func parseExtractionResponse(raw string) (*pagedoc.ExtractionResult, error) {
	raw = strings.TrimSpace(raw)

	var result pagedoc.ExtractionResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil {
		result.ExtractedAt = time.Now().UTC()
		return &result, nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end <= start {
		return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "no JSON object in extraction response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "malformed extraction response: %v", err)
	}
	result.ExtractedAt = time.Now().UTC()
	return &result, nil
}

// splitHTML cuts markup into pieces of roughly size bytes, breaking at tag
// boundaries so no tag is cut in half.
func splitHTML(html string, size int) []string {
	var parts []string
	for len(html) > size {
		cut := size
		// Back up to the nearest tag close so chunks end on whole tags.
		if i := strings.LastIndexByte(html[:cut], '>'); i > size/2 {
			cut = i + 1
		}
		parts = append(parts, html[:cut])
		html = html[cut:]
	}
	if strings.TrimSpace(html) != "" {
		parts = append(parts, html)
	}
	return parts
}

// mergeChunkResults concatenates chunk outputs in order, dropping items
// whose fingerprint was already seen. Overlap happens when the model
// re-emits context that straddles a chunk boundary. Metadata comes from
// the first chunk that produced it. The filter is returned for merge
// accounting.
func mergeChunkResults(results []*pagedoc.ExtractionResult) (*pagedoc.ExtractionResult, *bloom.Filter) {
	seen := bloom.NewFilter(10000, 0.001)
	var merged *pagedoc.ExtractionResult

	for _, r := range results {
		if r == nil {
			continue
		}
		if merged == nil {
			merged = &pagedoc.ExtractionResult{
				Title:       r.Title,
				Author:      r.Author,
				PublishDate: r.PublishDate,
				ExtractedAt: r.ExtractedAt,
			}
		} else {
			if merged.Title == "" {
				merged.Title = r.Title
			}
			if merged.Author == "" {
				merged.Author = r.Author
			}
			if merged.PublishDate == "" {
				merged.PublishDate = r.PublishDate
			}
		}

		for _, item := range r.Content {
			fp := fingerprint(&item)
			// Separators and markers legitimately repeat.
			if item.Translatable() && seen.Test(fp) {
				continue
			}
			seen.Add(fp)
			merged.Content = append(merged.Content, item)
		}
	}

	if merged == nil || len(merged.Content) == 0 {
		return nil, seen
	}
	return merged, seen
}

// fingerprint produces a stable dedup key for a content item.
func fingerprint(item *pagedoc.ContentItem) string {
	h := xxhash.New()
	_, _ = h.WriteString(string(item.Type))
	_, _ = h.WriteString(item.Text)
	_, _ = h.WriteString(item.Src)
	for _, li := range item.Items {
		_, _ = h.WriteString(li)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
