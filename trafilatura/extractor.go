package trafilatura

import (
	"bytes"
	"strings"
	"time"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements pagedoc.PageExtractor at compile time.
var _ pagedoc.PageExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
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

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	extracted, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	result := &pagedoc.ExtractionResult{
		Title:       extracted.Metadata.Title,
		Author:      extracted.Metadata.Author,
		ExtractedAt: time.Now().UTC(),
	}
	if !extracted.Metadata.Date.IsZero() {
		result.PublishDate = extracted.Metadata.Date.Format("2006-01-02")
	}

	if extracted.ContentNode != nil {
		contentHTML, err := renderNode(extracted.ContentNode)
		if err != nil {
			return nil, err
		}
		doc, err := gq.NewDocumentFromReader(strings.NewReader(contentHTML))
		if err != nil {
			return nil, pagedoc.Errorf(pagedoc.EINTERNAL, "failed to parse trafilatura output: %v", err)
		}
		result.Content = goquery.WalkSelection(doc.Find("body").First())
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
