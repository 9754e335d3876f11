package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/anthropic"
	"github.com/fwojciec/pagedoc/gemini"
	pdhttp "github.com/fwojciec/pagedoc/http"
	"github.com/fwojciec/pagedoc/rod"
	pdslog "github.com/fwojciec/pagedoc/slog"
	"github.com/fwojciec/pagedoc/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagedoc"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagedoc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PAGEDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Selectors = pdslog.NewLoggingSelectorCache(sqlite.NewSelectorCacheService(m.DB), deps.Logger)

	deps.Registry, err = buildRegistry(ctx, stderr)
	if err != nil {
		return err
	}

	if cmd == "convert" {
		if cli.Convert.Static {
			deps.Fetcher = pdhttp.NewFetcher()
		} else {
			fetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --static for plain HTTP fetching")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			deps.Fetcher = fetcher
		}
		defer deps.Fetcher.Close()
	}

	return kongCtx.Run(deps)
}

// buildRegistry registers a provider per configured API key. Model
// identifiers dispatch by prefix, so one run can mix providers only to the
// extent its model string allows.
func buildRegistry(ctx context.Context, stderr io.Writer) (*pagedoc.ProviderRegistry, error) {
	registry := pagedoc.NewProviderRegistry(nil)
	configured := 0

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		registry.Register("gemini", gemini.NewProvider(client))
		configured++
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		registry.Register("claude", anthropic.NewProvider(apiKey))
		configured++
	}

	if configured == 0 {
		fmt.Fprintln(stderr, "No API key configured; extraction falls back to heuristics and translation is unavailable.")
		fmt.Fprintln(stderr, "Set GEMINI_API_KEY (https://aistudio.google.com/apikey) or ANTHROPIC_API_KEY.")
	}

	return registry, nil
}

func defaultDBPath() string {
	if path := os.Getenv("PAGEDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagedoc.db"
	}
	dir := filepath.Join(home, ".pagedoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagedoc.db")
}
