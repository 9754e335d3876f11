package goquery

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
)

// candidateSelectors are containers likely to hold the article, checked in
// order of specificity before falling back to density scoring.
var candidateSelectors = []string{
	"article",
	"main",
	"[role='main']",
	".article-body",
	".post-content",
	".entry-content",
	"#content",
	".content",
}

// noiseSelectors are regions stripped before heuristic extraction.
var noiseSelectors = []string{
	"nav", "header", "footer", "script", "style", "noscript",
	".nav", ".navbar", ".menu", ".footer", ".comments", ".related",
	".share", ".social", ".advertisement", ".ad", "[aria-hidden='true']",
}

// extractHeuristic locates the article container without a selector set.
// It tries semantic candidates first, then falls back to the densest text
// container in the body. The strategy of last resort in the extraction
// cascade.
func (e *Extractor) extractHeuristic(doc *goquery.Document) (*pagedoc.ExtractionResult, error) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	container := findCandidate(doc)
	if container == nil {
		container = densestContainer(doc)
	}
	if container == nil {
		return nil, pagedoc.Errorf(pagedoc.EEMPTY, "no article container found")
	}

	result := &pagedoc.ExtractionResult{
		Title:       pageTitle(doc),
		Author:      metaAuthor(doc),
		PublishDate: metaPublishDate(doc),
		Content:     WalkSelection(container),
		ExtractedAt: time.Now().UTC(),
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func findCandidate(doc *goquery.Document) *goquery.Selection {
	for _, sel := range candidateSelectors {
		if c := doc.Find(sel).First(); c.Length() > 0 && textLen(c) >= 200 {
			return c
		}
	}
	return nil
}

// densestContainer scores direct and nested children of body by paragraph
// text mass and returns the best one.
func densestContainer(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestScore := 0

	doc.Find("body div, body section").Each(func(_ int, sel *goquery.Selection) {
		score := 0
		sel.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			score += textLen(p)
		})
		if score > bestScore {
			bestScore = score
			best = sel
		}
	})

	if best == nil {
		if body := doc.Find("body").First(); body.Length() > 0 && textLen(body) > 0 {
			return body
		}
		return nil
	}
	return best
}

func textLen(sel *goquery.Selection) int {
	return len(cleanText(sel.Text()))
}

func metaAuthor(doc *goquery.Document) string {
	if author, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		return cleanText(author)
	}
	return cleanText(doc.Find(".byline, .author, [rel='author']").First().Text())
}

func metaPublishDate(doc *goquery.Document) string {
	if date, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		return date
	}
	return publishDate(doc.Find("time").First())
}
