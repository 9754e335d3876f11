// Package goquery provides CSS-selector based page extraction. It applies
// site-specific selector sets to markup and maps the matched DOM onto the
// normalized content item model; without selectors it falls back to a
// density heuristic for locating the article container.
package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
)

// Ensure Extractor implements pagedoc.PageExtractor at compile time.
var _ pagedoc.PageExtractor = (*Extractor)(nil)

// Extractor turns raw HTML into an ExtractionResult using a selector set,
// or a DOM density heuristic when no selectors are given.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the normalized content model.
// Returns EEMPTY when the selectors (or the heuristic) match no content,
// so the caller can fall back to the next strategy.
func (e *Extractor) Extract(rawHTML string, selectors *pagedoc.SelectorSet) (*pagedoc.ExtractionResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagedoc.Errorf(pagedoc.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, pagedoc.Errorf(pagedoc.EINVALID, "failed to parse HTML: %v", err)
	}

	if selectors == nil {
		return e.extractHeuristic(doc)
	}
	return e.extractWithSelectors(doc, selectors)
}

func (e *Extractor) extractWithSelectors(doc *goquery.Document, selectors *pagedoc.SelectorSet) (*pagedoc.ExtractionResult, error) {
	if err := selectors.Validate(); err != nil {
		return nil, err
	}

	container := doc.Find(selectors.ArticleContainer).First()
	if container.Length() == 0 {
		return nil, pagedoc.Errorf(pagedoc.EEMPTY, "article container %q matched nothing", selectors.ArticleContainer)
	}

	for _, excl := range selectors.Exclude {
		container.Find(excl).Remove()
	}

	result := &pagedoc.ExtractionResult{
		ExtractedAt: time.Now().UTC(),
	}

	if selectors.Title != "" {
		result.Title = cleanText(doc.Find(selectors.Title).First().Text())
	}
	if result.Title == "" {
		result.Title = pageTitle(doc)
	}
	if selectors.Author != "" {
		result.Author = cleanText(doc.Find(selectors.Author).First().Text())
	}
	if selectors.PublishDate != "" {
		result.PublishDate = publishDate(doc.Find(selectors.PublishDate).First())
	}

	// Walk either the matched content blocks or the whole container when
	// the content selector is too narrow to match anything.
	blocks := container.Find(selectors.Content)
	if blocks.Length() > 0 {
		blocks.Each(func(_ int, block *goquery.Selection) {
			result.Content = append(result.Content, walkNode(block)...)
		})
	} else {
		result.Content = WalkSelection(container)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// pageTitle reads the document title from metadata, preferring Open Graph.
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && og != "" {
		return cleanText(og)
	}
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return cleanText(doc.Find("title").First().Text())
}

// publishDate prefers a machine-readable datetime attribute over node text.
func publishDate(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if dt, ok := sel.Attr("datetime"); ok && dt != "" {
		return dt
	}
	return cleanText(sel.Text())
}
