// Package mock provides function-field mock implementations of pagedoc
// interfaces for tests.
package mock

import (
	"context"

	"github.com/fwojciec/pagedoc"
)

var _ pagedoc.Provider = (*Provider)(nil)

// Provider is a mock implementation of pagedoc.Provider.
type Provider struct {
	GenerateFn func(ctx context.Context, req pagedoc.GenerateRequest) (string, error)
}

func (p *Provider) Generate(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
	return p.GenerateFn(ctx, req)
}

var _ pagedoc.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pagedoc.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ pagedoc.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of pagedoc.PageExtractor.
type PageExtractor struct {
	ExtractFn func(html string, selectors *pagedoc.SelectorSet) (*pagedoc.ExtractionResult, error)
}

func (e *PageExtractor) Extract(html string, selectors *pagedoc.SelectorSet) (*pagedoc.ExtractionResult, error) {
	return e.ExtractFn(html, selectors)
}

var _ pagedoc.LanguageDetector = (*LanguageDetector)(nil)

// LanguageDetector is a mock implementation of pagedoc.LanguageDetector.
type LanguageDetector struct {
	DetectFn func(ctx context.Context, text string) (string, error)
}

func (d *LanguageDetector) Detect(ctx context.Context, text string) (string, error) {
	return d.DetectFn(ctx, text)
}

var _ pagedoc.Generator = (*Generator)(nil)

// Generator is a mock implementation of pagedoc.Generator.
type Generator struct {
	FormatFn   func() pagedoc.Format
	GenerateFn func(ctx context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error)
}

func (g *Generator) Format() pagedoc.Format {
	return g.FormatFn()
}

func (g *Generator) Generate(ctx context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error) {
	return g.GenerateFn(ctx, result, progress)
}
