// Package pipeline sequences extraction, translation, summarization and
// document generation for one run at a time, maintaining the polled
// processing state and honoring cooperative cancellation between stages.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/pagedoc"
	"github.com/google/uuid"
)

// Extractor runs the extraction strategy cascade for a page.
type Extractor interface {
	Extract(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error)
}

// Translator rewrites a result's text fields into a target language.
type Translator interface {
	Translate(ctx context.Context, result *pagedoc.ExtractionResult, targetLang string, progress func(done, total int)) error
}

// Runner drives the pipeline. One logical run at a time: a new Start
// while a run is active is rejected, not queued.
type Runner struct {
	Fetcher    pagedoc.Fetcher
	Extractor  Extractor
	Detector   pagedoc.LanguageDetector
	Translator Translator

	// Summarization provider. Nil disables the summarize stage.
	Provider pagedoc.Provider
	Model    string
	Retry    pagedoc.RetryPolicy

	Generators []pagedoc.Generator

	Logger *slog.Logger

	mu       sync.Mutex
	state    pagedoc.ProcessingState
	cancel   context.CancelFunc
	artifact *pagedoc.Artifact
	done     chan struct{}
}

// Start validates the request and begins a run in the background.
// Returns ECONFLICT while another run is active; poll State for progress.
func (r *Runner) Start(req pagedoc.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Translate() && r.Translator == nil {
		return pagedoc.Errorf(pagedoc.EINVALID, "translation requested but no translator configured")
	}
	if r.generatorFor(req.OutputFormat) == nil {
		return pagedoc.Errorf(pagedoc.EINVALID, "no generator for format %q", req.OutputFormat)
	}

	r.mu.Lock()
	if r.state.IsProcessing {
		r.mu.Unlock()
		return pagedoc.Errorf(pagedoc.ECONFLICT, "a run is already in progress")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.artifact = nil
	r.done = make(chan struct{})
	r.state = pagedoc.ProcessingState{
		RunID:        uuid.New().String(),
		Stage:        pagedoc.StageIdle,
		Progress:     pagedoc.ProgressStart,
		IsProcessing: true,
		StartTime:    time.Now().UTC(),
	}
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		r.run(ctx, req)
	}()

	return nil
}

// State returns a copy of the current processing state.
func (r *Runner) State() pagedoc.ProcessingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cancel requests cooperative cancellation of the active run. A request
// already sent to a provider is allowed to finish; its result is
// discarded at the next checkpoint.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil && r.state.IsProcessing {
		r.cancel()
	}
}

// Wait blocks until the active run reaches a terminal state.
// Returns immediately when no run was started.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Artifact returns the generated document after a terminal DONE state.
func (r *Runner) Artifact() (*pagedoc.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifact == nil {
		return nil, pagedoc.Errorf(pagedoc.ENOTFOUND, "no artifact available")
	}
	return r.artifact, nil
}

// run executes the stage sequence. Every remote-call-bearing stage is
// bracketed by cancellation checks so a cancel unwinds without further
// provider calls.
func (r *Runner) run(ctx context.Context, req pagedoc.Request) {
	_, err := r.execute(ctx, req)
	cancelled := pagedoc.ErrorCode(err) == pagedoc.ECANCELED ||
		(ctx.Err() != nil && !pagedoc.IsAuthError(err))
	switch {
	case err == nil:
		r.finish(pagedoc.StageDone, pagedoc.ProgressDone, nil)
	case cancelled:
		r.log().Info("run cancelled")
		r.finish(pagedoc.StageCancelled, 0, nil)
	default:
		r.log().Error("run failed",
			"code", pagedoc.ErrorCode(err),
			"error", err,
		)
		r.finish(pagedoc.StageError, 0, err)
	}
}

func (r *Runner) execute(ctx context.Context, req pagedoc.Request) (*pagedoc.ExtractionResult, error) {
	// Page acquisition and type detection.
	r.setStage(pagedoc.StageDetectingPageType, pagedoc.ProgressStart)

	html := req.HTML
	if html == "" {
		if r.Fetcher == nil {
			return nil, pagedoc.Errorf(pagedoc.EINVALID, "no fetcher configured and no HTML provided")
		}
		fetched, err := pagedoc.CallWithRetry(ctx, r.Retry, func(ctx context.Context) (string, error) {
			return r.Fetcher.Fetch(ctx, req.URL)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, pagedoc.Errorf(pagedoc.ECANCELED, "canceled during fetch")
			}
			return nil, pagedoc.Errorf(pagedoc.EUNAVAILABLE, "page could not be fetched: %v", err)
		}
		html = fetched
	}
	r.setProgress(pagedoc.ProgressPageTypeKnown)

	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Extraction.
	r.setStage(pagedoc.StageExtracting, pagedoc.ProgressPageTypeKnown)
	result, strategy, err := r.Extractor.Extract(ctx, req.URL, html)
	if err != nil {
		return nil, err
	}
	r.log().Info("extraction complete",
		"strategy", strategy,
		"items", len(result.Content),
	)
	r.setProgress(pagedoc.ProgressExtracted)

	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Language detection.
	if r.Detector != nil && result.DetectedLanguage == "" {
		code, err := r.Detector.Detect(ctx, result.PlainText())
		if err != nil {
			if pagedoc.IsAuthError(err) {
				return nil, err
			}
			r.log().Warn("language detection failed", "error", err)
		} else {
			result.DetectedLanguage = code
		}
	}

	// Translation. Skipped when the page is already in the target
	// language; a failed translation never replaces good content.
	if req.Translate() && result.DetectedLanguage != req.TargetLanguage {
		if err := r.checkpoint(ctx); err != nil {
			return nil, err
		}
		r.setStage(pagedoc.StageTranslating, pagedoc.ProgressExtracted)
		err := r.Translator.Translate(ctx, result, req.TargetLanguage, func(done, total int) {
			r.setProgress(scaleProgress(done, total,
				pagedoc.ProgressExtracted, pagedoc.ProgressTranslationEnd))
		})
		if err != nil {
			return nil, err
		}
		r.setProgress(pagedoc.ProgressTranslationEnd)
	}

	// Summarization, best effort.
	if req.Summarize && r.Provider != nil {
		if err := r.checkpoint(ctx); err != nil {
			return nil, err
		}
		r.setStage(pagedoc.StageSummarizing, pagedoc.ProgressTranslationEnd)
		if err := r.summarize(ctx, result, req.TargetLanguage); err != nil {
			if pagedoc.IsAuthError(err) {
				return nil, err
			}
			r.log().Warn("summarization failed", "error", err)
		}
		r.setProgress(pagedoc.ProgressSummarized)
	}

	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Generation.
	r.setStage(pagedoc.StageGenerating, pagedoc.ProgressSummarized)
	gen := r.generatorFor(req.OutputFormat)
	artifact, err := gen.Generate(ctx, result, func(p int) {
		r.setProgress(scaleProgress(p, 100, pagedoc.ProgressSummarized, pagedoc.ProgressDone-1))
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, pagedoc.Errorf(pagedoc.ECANCELED, "canceled during generation")
		}
		return nil, err
	}

	r.mu.Lock()
	r.artifact = artifact
	r.mu.Unlock()

	return result, nil
}

// checkpoint is the cooperative cancellation check between stages.
func (r *Runner) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return pagedoc.Errorf(pagedoc.ECANCELED, "run canceled")
	}
	return nil
}

// setStage advances the stage, refusing backward transitions.
func (r *Runner) setStage(stage pagedoc.Stage, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.Stage.CanTransitionTo(stage) {
		return
	}
	r.state.Stage = stage
	if progress > r.state.Progress {
		r.state.Progress = progress
	}
}

// setProgress raises progress; it never moves backwards within a run.
func (r *Runner) setProgress(progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress > r.state.Progress {
		r.state.Progress = progress
	}
}

// finish records the terminal transition. IsProcessing is never left true
// after this point.
func (r *Runner) finish(stage pagedoc.Stage, progress int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Stage = stage
	if progress > r.state.Progress {
		r.state.Progress = progress
	}
	r.state.IsProcessing = false
	if err != nil {
		r.state.ErrorCode = pagedoc.ErrorCode(err)
		r.state.ErrorMessage = pagedoc.ErrorMessage(err)
	}
}

func (r *Runner) generatorFor(format pagedoc.Format) pagedoc.Generator {
	for _, g := range r.Generators {
		if g.Format() == format {
			return g
		}
	}
	return nil
}

// scaleProgress maps done/total onto the [lo, hi] checkpoint range.
func scaleProgress(done, total, lo, hi int) int {
	if total <= 0 {
		return hi
	}
	if done > total {
		done = total
	}
	return lo + (hi-lo)*done/total
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
