package readability

import (
	"strings"
	"time"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/goquery"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements pagedoc.PageExtractor at compile time.
var _ pagedoc.PageExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
// It is a heuristic extractor: the selector set argument is ignored.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the normalized content model.
func (e *Extractor) Extract(rawHTML string, _ *pagedoc.SelectorSet) (*pagedoc.ExtractionResult, error) {
	if rawHTML == "" {
		return nil, pagedoc.Errorf(pagedoc.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	doc, err := gq.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "failed to parse readability output: %v", err)
	}

	result := &pagedoc.ExtractionResult{
		Title:       article.Title,
		Author:      article.Byline,
		Content:     goquery.WalkSelection(doc.Find("body").First()),
		ExtractedAt: time.Now().UTC(),
	}
	if article.PublishedTime != nil {
		result.PublishDate = article.PublishedTime.Format("2006-01-02")
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
