package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/detect"
	"github.com/fwojciec/pagedoc/epub"
	"github.com/fwojciec/pagedoc/extract"
	"github.com/fwojciec/pagedoc/goquery"
	"github.com/fwojciec/pagedoc/htmltomarkdown"
	"github.com/fwojciec/pagedoc/lingua"
	"github.com/fwojciec/pagedoc/pipeline"
	"github.com/fwojciec/pagedoc/readability"
	pdslog "github.com/fwojciec/pagedoc/slog"
	"github.com/fwojciec/pagedoc/trafilatura"
	"github.com/fwojciec/pagedoc/translate"
)

// buildDetector assembles the language detection chain. The model tier
// leads when a provider is available; a malformed or failed model answer
// falls through to the offline tier, which always produces a code.
func buildDetector(provider pagedoc.Provider, model string, retry pagedoc.RetryPolicy, offline pagedoc.LanguageDetector) *pagedoc.FallbackDetector {
	d := &pagedoc.FallbackDetector{}
	if provider != nil {
		d.Detectors = append(d.Detectors, &detect.ModelDetector{
			Provider: provider,
			Model:    model,
			Retry:    retry,
		})
	}
	d.Detectors = append(d.Detectors, offline)
	return d
}

// Run executes the convert command: it assembles the pipeline, starts a
// run, mirrors its progress to stderr and writes the artifact on success.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	var provider pagedoc.Provider
	if p, err := deps.Registry.For(c.Model); err == nil {
		provider = pdslog.NewLoggingProvider(pipeline.NewLimitedProvider(p, c.RPS), deps.Logger)
	} else if c.Lang != "" {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedoc.ErrorMessage(err))
		return pagedoc.Errorf(pagedoc.EINVALID, "translation to %q requires a configured provider for model %q", c.Lang, c.Model)
	}

	retry := pagedoc.DefaultRetryPolicy()

	extractor := &extract.Selector{
		Cache:    deps.Selectors,
		Provider: provider,
		Model:    c.Model,
		Retry:    retry,
		DOM:      goquery.NewExtractor(),
		Heuristics: []pagedoc.PageExtractor{
			trafilatura.NewExtractor(),
			readability.NewExtractor(),
			goquery.NewExtractor(),
		},
		Logger: deps.Logger,
	}

	detector := buildDetector(provider, c.Model, retry, lingua.NewDetector())

	runner := &pipeline.Runner{
		Fetcher:   deps.Fetcher,
		Extractor: extractor,
		Detector:  detector,
		Provider:  provider,
		Model:     c.Model,
		Retry:     retry,
		Generators: []pagedoc.Generator{
			htmltomarkdown.NewGenerator(),
			epub.NewGenerator(),
		},
		Logger: deps.Logger,
	}
	if provider != nil {
		runner.Translator = &translate.Engine{
			Provider: provider,
			Model:    c.Model,
			Retry:    retry,
			Logger:   deps.Logger,
		}
	}

	req := pagedoc.Request{
		URL:            c.URL,
		OutputFormat:   pagedoc.Format(c.Format),
		TargetLanguage: c.Lang,
		Model:          c.Model,
		Summarize:      c.Summarize,
	}
	if err := runner.Start(req); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedoc.ErrorMessage(err))
		return err
	}

	// Ctrl-C requests cooperative cancellation; a second one kills us.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		fmt.Fprintln(deps.Stderr, "cancelling...")
		runner.Cancel()
		signal.Stop(sigs)
	}()

	done := make(chan struct{})
	go func() {
		runner.Wait()
		close(done)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	last := -1
poll:
	for {
		select {
		case <-done:
			break poll
		case <-ticker.C:
			state := runner.State()
			if state.Progress != last {
				fmt.Fprintf(deps.Stderr, "%3d%%  %s\n", state.Progress, state.Stage)
				last = state.Progress
			}
		}
	}

	state := runner.State()
	switch state.Stage {
	case pagedoc.StageCancelled:
		return pagedoc.Errorf(pagedoc.ECANCELED, "conversion cancelled")
	case pagedoc.StageError:
		return pagedoc.Errorf(state.ErrorCode, "conversion failed: %s", state.ErrorMessage)
	}

	artifact, err := runner.Artifact()
	if err != nil {
		return err
	}

	path := c.Output
	if path == "" {
		path = artifact.Name
	}
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "%s\n", path)
	return nil
}
