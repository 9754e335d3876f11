package pipeline_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/mock"
	"github.com/fwojciec/pagedoc/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	fn func(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error)
}

func (s *stubExtractor) Extract(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error) {
	return s.fn(ctx, url, html)
}

type stubTranslator struct {
	fn func(ctx context.Context, result *pagedoc.ExtractionResult, targetLang string, progress func(done, total int)) error
}

func (s *stubTranslator) Translate(ctx context.Context, result *pagedoc.ExtractionResult, targetLang string, progress func(done, total int)) error {
	return s.fn(ctx, result, targetLang, progress)
}

func simpleResult() *pagedoc.ExtractionResult {
	return &pagedoc.ExtractionResult{
		Title:   "Title",
		Content: []pagedoc.ContentItem{{Type: pagedoc.ItemParagraph, Text: "hello"}},
	}
}

func markdownGenerator() *mock.Generator {
	return &mock.Generator{
		FormatFn: func() pagedoc.Format { return pagedoc.FormatMarkdown },
		GenerateFn: func(ctx context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error) {
			return &pagedoc.Artifact{Name: "out.md", MIMEType: "text/markdown", Data: []byte("# done")}, nil
		},
	}
}

func newRunner() *pipeline.Runner {
	return &pipeline.Runner{
		Extractor: &stubExtractor{fn: func(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error) {
			return simpleResult(), "heuristic", nil
		}},
		Generators: []pagedoc.Generator{markdownGenerator()},
	}
}

func TestRunnerStart(t *testing.T) {
	t.Parallel()

	t.Run("completes a run and exposes the artifact", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		err := r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown})
		require.NoError(t, err)

		r.Wait()

		state := r.State()
		assert.Equal(t, pagedoc.StageDone, state.Stage)
		assert.Equal(t, pagedoc.ProgressDone, state.Progress)
		assert.False(t, state.IsProcessing)
		assert.NotEmpty(t, state.RunID)

		artifact, err := r.Artifact()
		require.NoError(t, err)
		assert.Equal(t, "out.md", artifact.Name)
	})

	t.Run("rejects invalid requests before starting", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		err := r.Start(pagedoc.Request{OutputFormat: pagedoc.FormatMarkdown})

		require.Error(t, err)
		assert.Equal(t, pagedoc.EINVALID, pagedoc.ErrorCode(err))
		assert.False(t, r.State().IsProcessing)
	})

	t.Run("rejects a second start while running", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		r := newRunner()
		r.Extractor = &stubExtractor{fn: func(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error) {
			<-release
			return simpleResult(), "heuristic", nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown}))

		err := r.Start(pagedoc.Request{HTML: "<p>y</p>", OutputFormat: pagedoc.FormatMarkdown})
		require.Error(t, err)
		assert.Equal(t, pagedoc.ECONFLICT, pagedoc.ErrorCode(err))

		close(release)
		r.Wait()

		// A finished run frees the slot.
		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>z</p>", OutputFormat: pagedoc.FormatMarkdown}))
		r.Wait()
	})

	t.Run("requires a generator for the requested format", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		err := r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatEPUB})

		require.Error(t, err)
		assert.Equal(t, pagedoc.EINVALID, pagedoc.ErrorCode(err))
	})

	t.Run("requires a translator when translation is requested", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		err := r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, TargetLanguage: "pl"})

		require.Error(t, err)
		assert.Equal(t, pagedoc.EINVALID, pagedoc.ErrorCode(err))
	})
}

func TestRunnerPipeline(t *testing.T) {
	t.Parallel()

	t.Run("fetches when no HTML is supplied", func(t *testing.T) {
		t.Parallel()

		var fetched atomic.Int32
		r := newRunner()
		r.Fetcher = &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (string, error) {
			fetched.Add(1)
			assert.Equal(t, "https://example.com/a", url)
			return "<p>fetched</p>", nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{URL: "https://example.com/a", OutputFormat: pagedoc.FormatMarkdown}))
		r.Wait()

		assert.Equal(t, pagedoc.StageDone, r.State().Stage)
		assert.Equal(t, int32(1), fetched.Load())
	})

	t.Run("transient fetch failures are retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		r := newRunner()
		r.Retry = pagedoc.RetryPolicy{
			MaxRetries:        3,
			Delays:            []time.Duration{time.Nanosecond},
			RetryableStatuses: []int{503},
		}
		r.Fetcher = &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (string, error) {
			if attempts.Add(1) <= 2 {
				return "", &pagedoc.StatusError{Status: 503, Message: "service unavailable"}
			}
			return "<p>fetched</p>", nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{URL: "https://example.com/a", OutputFormat: pagedoc.FormatMarkdown}))
		r.Wait()

		assert.Equal(t, pagedoc.StageDone, r.State().Stage)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("fetch failure ends in an error state", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		r.Fetcher = &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (string, error) {
			return "", &pagedoc.StatusError{Status: 502, Message: "bad gateway"}
		}}

		require.NoError(t, r.Start(pagedoc.Request{URL: "https://example.com/a", OutputFormat: pagedoc.FormatMarkdown}))
		r.Wait()

		state := r.State()
		assert.Equal(t, pagedoc.StageError, state.Stage)
		assert.Equal(t, pagedoc.EUNAVAILABLE, state.ErrorCode)
		assert.False(t, state.IsProcessing)
	})

	t.Run("skips translation when the page already matches the target", func(t *testing.T) {
		t.Parallel()

		var translated atomic.Int32
		r := newRunner()
		r.Detector = &mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
			return "en", nil
		}}
		r.Translator = &stubTranslator{fn: func(ctx context.Context, result *pagedoc.ExtractionResult, lang string, progress func(int, int)) error {
			translated.Add(1)
			return nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, TargetLanguage: "en"}))
		r.Wait()

		assert.Equal(t, pagedoc.StageDone, r.State().Stage)
		assert.Equal(t, int32(0), translated.Load())
	})

	t.Run("translates when languages differ", func(t *testing.T) {
		t.Parallel()

		var translated atomic.Int32
		r := newRunner()
		r.Detector = &mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
			return "en", nil
		}}
		r.Translator = &stubTranslator{fn: func(ctx context.Context, result *pagedoc.ExtractionResult, lang string, progress func(int, int)) error {
			translated.Add(1)
			assert.Equal(t, "pl", lang)
			return nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, TargetLanguage: "pl"}))
		r.Wait()

		assert.Equal(t, pagedoc.StageDone, r.State().Stage)
		assert.Equal(t, int32(1), translated.Load())
	})

	t.Run("cancel after extraction prevents translation calls", func(t *testing.T) {
		t.Parallel()

		extracted := make(chan struct{})
		var translatorCalls atomic.Int32

		r := newRunner()
		r.Extractor = &stubExtractor{fn: func(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error) {
			close(extracted)
			// Give Cancel a chance to land before the next checkpoint.
			time.Sleep(50 * time.Millisecond)
			return simpleResult(), "heuristic", nil
		}}
		r.Detector = &mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
			return "en", nil
		}}
		r.Translator = &stubTranslator{fn: func(ctx context.Context, result *pagedoc.ExtractionResult, lang string, progress func(int, int)) error {
			translatorCalls.Add(1)
			return nil
		}}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, TargetLanguage: "pl"}))
		<-extracted
		r.Cancel()
		r.Wait()

		state := r.State()
		assert.Equal(t, pagedoc.StageCancelled, state.Stage)
		assert.False(t, state.IsProcessing)
		assert.Equal(t, int32(0), translatorCalls.Load())
	})

	t.Run("progress never moves backwards", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		r.Translator = &stubTranslator{fn: func(ctx context.Context, result *pagedoc.ExtractionResult, lang string, progress func(int, int)) error {
			progress(1, 2)
			progress(2, 2)
			return nil
		}}
		r.Detector = &mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
			return "en", nil
		}}

		var last atomic.Int32
		monitor := make(chan struct{})
		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, TargetLanguage: "de"}))
		go func() {
			defer close(monitor)
			for r.State().IsProcessing {
				p := int32(r.State().Progress)
				prev := last.Load()
				if p > prev {
					last.Store(p)
				}
			}
		}()
		r.Wait()
		<-monitor

		assert.Equal(t, pagedoc.ProgressDone, r.State().Progress)
	})

	t.Run("summarization failure does not fail the run", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		r.Provider = &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
			return "", &pagedoc.StatusError{Status: 500, Message: "boom"}
		}}
		r.Model = "test-model"
		r.Retry = pagedoc.RetryPolicy{MaxRetries: 0}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, Summarize: true}))
		r.Wait()

		assert.Equal(t, pagedoc.StageDone, r.State().Stage)
	})

	t.Run("summarization success lands on the result", func(t *testing.T) {
		t.Parallel()

		var summarized *pagedoc.ExtractionResult
		r := newRunner()
		r.Provider = &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
			return "A fine summary.", nil
		}}
		r.Model = "test-model"
		r.Generators = []pagedoc.Generator{&mock.Generator{
			FormatFn: func() pagedoc.Format { return pagedoc.FormatMarkdown },
			GenerateFn: func(ctx context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error) {
				summarized = result
				return &pagedoc.Artifact{Name: "out.md"}, nil
			},
		}}

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, Summarize: true}))
		r.Wait()

		require.Equal(t, pagedoc.StageDone, r.State().Stage)
		require.NotNil(t, summarized)
		assert.Equal(t, "A fine summary.", summarized.Summary)
	})

	t.Run("summary input stays valid utf-8 after truncation", func(t *testing.T) {
		t.Parallel()

		var sample string
		r := newRunner()
		r.Extractor = &stubExtractor{fn: func(ctx context.Context, url, html string) (*pagedoc.ExtractionResult, string, error) {
			return &pagedoc.ExtractionResult{
				Title: "Long",
				Content: []pagedoc.ContentItem{
					// Odd byte prefix so the cut point lands mid-rune.
					{Type: pagedoc.ItemParagraph, Text: "a" + strings.Repeat("ż", 40000)},
				},
			}, "heuristic", nil
		}}
		r.Provider = &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
			sample = req.UserContent
			return "Summary.", nil
		}}
		r.Model = "test-model"

		require.NoError(t, r.Start(pagedoc.Request{HTML: "<p>x</p>", OutputFormat: pagedoc.FormatMarkdown, Summarize: true}))
		r.Wait()

		require.Equal(t, pagedoc.StageDone, r.State().Stage)
		assert.True(t, utf8.ValidString(sample))
		assert.NotEmpty(t, sample)
	})

	t.Run("artifact is unavailable before a run finishes", func(t *testing.T) {
		t.Parallel()

		r := newRunner()
		_, err := r.Artifact()

		require.Error(t, err)
		assert.Equal(t, pagedoc.ENOTFOUND, pagedoc.ErrorCode(err))
	})
}
