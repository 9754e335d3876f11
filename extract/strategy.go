// Package extract chooses and executes an extraction strategy for a page:
// cached selectors, AI-discovered selectors, AI full extraction, or DOM
// heuristics, in that order of preference. A strategy that produces no
// content falls through to the next; the cache is invalidated the moment
// it fails so it can never stay wrong.
package extract

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/pagedoc"
)

// Strategy names reported for observability.
const (
	StrategyCached     = "cached_selectors"
	StrategyDiscovered = "discovered_selectors"
	StrategyFullAI     = "full_ai"
	StrategyHeuristic  = "heuristic"
	StrategyVideo      = "video"
	StrategyPDF        = "pdf"
)

// Selector selects among extraction strategies and executes them.
type Selector struct {
	// Cache of proven per-domain selector sets. Optional.
	Cache pagedoc.SelectorCacheService

	// Provider and model for AI-assisted strategies. A nil Provider
	// disables selector discovery and full AI extraction.
	Provider pagedoc.Provider
	Model    string
	Retry    pagedoc.RetryPolicy

	// DOM applies selector sets to markup.
	DOM pagedoc.PageExtractor

	// Heuristics are tried in order as the strategy of last resort.
	Heuristics []pagedoc.PageExtractor

	Logger *slog.Logger
}

// Extract runs the strategy cascade for a page and returns the content
// model plus the name of the strategy that produced it.
func (s *Selector) Extract(ctx context.Context, rawURL, html string) (*pagedoc.ExtractionResult, string, error) {
	if strings.TrimSpace(html) == "" {
		return nil, "", pagedoc.Errorf(pagedoc.EINVALID, "empty HTML input")
	}

	switch DetectPageType(rawURL, html) {
	case PageTypeVideo:
		result, err := s.videoExtract(rawURL, html)
		return result, StrategyVideo, err
	case PageTypePDF:
		result, err := s.pdfExtract(rawURL)
		return result, StrategyPDF, err
	}

	domain := domainOf(rawURL)

	// Cached selectors first: free and proven.
	if result := s.tryCached(ctx, domain, html); result != nil {
		result.SourceURL = rawURL
		return result, StrategyCached, nil
	}

	// AI selector discovery: one model call buys a reusable recipe.
	if s.Provider != nil {
		result, err := s.tryDiscovery(ctx, domain, html)
		if err != nil {
			if pagedoc.IsAuthError(err) {
				return nil, "", err
			}
			s.log().Warn("selector discovery failed", "domain", domain, "error", err)
		}
		if result != nil {
			result.SourceURL = rawURL
			return result, StrategyDiscovered, nil
		}

		// Full AI extraction: expensive, works on anything.
		result, err = s.FullExtract(ctx, html)
		if err != nil {
			if pagedoc.IsAuthError(err) {
				return nil, "", err
			}
			s.log().Warn("full AI extraction failed", "domain", domain, "error", err)
		}
		if result != nil {
			result.SourceURL = rawURL
			return result, StrategyFullAI, nil
		}
	}

	// DOM heuristics: the strategy of last resort.
	for _, h := range s.Heuristics {
		if err := ctx.Err(); err != nil {
			return nil, "", pagedoc.Errorf(pagedoc.ECANCELED, "canceled during extraction")
		}
		result, err := h.Extract(html, nil)
		if err != nil {
			s.log().Debug("heuristic extraction failed", "error", err)
			continue
		}
		result.SourceURL = rawURL
		return result, StrategyHeuristic, nil
	}

	return nil, "", pagedoc.Errorf(pagedoc.EEMPTY, "every extraction strategy produced no content")
}

// tryCached applies a trusted cached selector set. On failure the entry is
// invalidated immediately so the next run re-discovers selectors.
func (s *Selector) tryCached(ctx context.Context, domain, html string) *pagedoc.ExtractionResult {
	if s.Cache == nil || s.DOM == nil || domain == "" {
		return nil
	}

	cached, err := s.Cache.Get(ctx, domain)
	if err != nil {
		if pagedoc.ErrorCode(err) != pagedoc.ENOTFOUND {
			s.log().Warn("selector cache read failed", "domain", domain, "error", err)
		}
		return nil
	}
	if !cached.Trusted() {
		return nil
	}

	result, err := s.DOM.Extract(html, &cached.Selectors)
	if err != nil {
		s.log().Info("cached selectors failed, invalidating",
			"domain", domain,
			"error", err,
		)
		if ierr := s.Cache.Invalidate(ctx, domain); ierr != nil {
			s.log().Warn("cache invalidation failed", "domain", domain, "error", ierr)
		}
		return nil
	}

	if err := s.Cache.MarkSuccess(ctx, domain); err != nil {
		s.log().Warn("cache success mark failed", "domain", domain, "error", err)
	}
	return result
}

// tryDiscovery discovers selectors with the model, applies them, and
// caches the recipe when it works.
func (s *Selector) tryDiscovery(ctx context.Context, domain, html string) (*pagedoc.ExtractionResult, error) {
	if s.DOM == nil {
		return nil, nil
	}

	set, err := s.DiscoverSelectors(ctx, html)
	if err != nil {
		return nil, err
	}

	result, err := s.DOM.Extract(html, set)
	if err != nil {
		s.log().Debug("discovered selectors matched nothing", "domain", domain, "error", err)
		return nil, nil
	}

	if s.Cache != nil && domain != "" {
		if err := s.Cache.Put(ctx, domain, *set); err != nil {
			s.log().Warn("selector cache write failed", "domain", domain, "error", err)
		} else if err := s.Cache.MarkSuccess(ctx, domain); err != nil {
			s.log().Warn("cache success mark failed", "domain", domain, "error", err)
		}
	}
	return result, nil
}

// videoExtract builds a minimal content model for video platform pages
// from their social metadata, bypassing article extraction entirely.
func (s *Selector) videoExtract(rawURL, html string) (*pagedoc.ExtractionResult, error) {
	meta := socialMetadata(html)

	result := &pagedoc.ExtractionResult{
		Title:       meta["og:title"],
		SourceURL:   rawURL,
		ExtractedAt: time.Now().UTC(),
	}
	if desc := meta["og:description"]; desc != "" {
		result.Content = append(result.Content, pagedoc.ContentItem{
			Type: pagedoc.ItemParagraph,
			Text: desc,
		})
	}
	if img := meta["og:image"]; img != "" {
		result.Content = append(result.Content, pagedoc.ContentItem{
			Type: pagedoc.ItemImage,
			Src:  img,
			Alt:  result.Title,
		})
	}
	if rawURL != "" {
		result.Content = append(result.Content, pagedoc.ContentItem{
			Type: pagedoc.ItemParagraph,
			Text: "Source video: " + rawURL,
		})
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// pdfExtract builds a pointer document for PDF sources. Parsing PDF
// content is the document generator's territory, not the page pipeline's.
func (s *Selector) pdfExtract(rawURL string) (*pagedoc.ExtractionResult, error) {
	if rawURL == "" {
		return nil, pagedoc.Errorf(pagedoc.EINVALID, "PDF source requires a URL")
	}

	title := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		if segs := strings.Split(strings.Trim(u.Path, "/"), "/"); len(segs) > 0 && segs[len(segs)-1] != "" {
			title = segs[len(segs)-1]
		}
	}

	return &pagedoc.ExtractionResult{
		Title:     title,
		SourceURL: rawURL,
		Content: []pagedoc.ContentItem{
			{Type: pagedoc.ItemParagraph, Text: "Source document: " + rawURL},
		},
		ExtractedAt: time.Now().UTC(),
	}, nil
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

func (s *Selector) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
