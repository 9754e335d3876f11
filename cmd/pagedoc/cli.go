package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	DB        *sqlite.DB
	Selectors pagedoc.SelectorCacheService
	Registry  *pagedoc.ProviderRegistry
	Fetcher   pagedoc.Fetcher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Convert   ConvertCmd   `cmd:"" help:"Convert a web page to a document"`
	Selectors SelectorsCmd `cmd:"" help:"Manage cached extraction selectors"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	URL string `arg:"" help:"Page URL to convert"`

	Format    string  `short:"f" default:"markdown" enum:"markdown,epub" help:"Output format (markdown or epub)"`
	Lang      string  `short:"l" help:"Target language as an ISO 639-1 code (empty disables translation)"`
	Model     string  `short:"m" default:"gemini-3-flash-preview" help:"Model identifier for AI-assisted steps"`
	Summarize bool    `short:"s" help:"Append a model-generated summary"`
	Output    string  `short:"o" help:"Output file path (defaults to a name derived from the title)"`
	Static    bool    `help:"Fetch with plain HTTP instead of a headless browser"`
	RPS       float64 `name:"rps" default:"1" help:"Model request rate limit per second"`
}

// SelectorsCmd groups selector cache maintenance commands.
type SelectorsCmd struct {
	Show  SelectorsShowCmd  `cmd:"" help:"Show cached selectors for a domain"`
	Clear SelectorsClearCmd `cmd:"" help:"Discard cached selectors for a domain"`
}

// SelectorsShowCmd is the "selectors show" subcommand.
type SelectorsShowCmd struct {
	Domain string `arg:"" help:"Domain to look up"`
}

// SelectorsClearCmd is the "selectors clear" subcommand.
type SelectorsClearCmd struct {
	Domain string `arg:"" help:"Domain to invalidate"`
}
