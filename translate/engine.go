// Package translate provides the translation engine: it rewrites the text
// fields of an extraction result field-by-field, in size-bounded batches,
// through a language-model provider. Failed chunks degrade to original
// text instead of failing the run; only credential failures abort.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fwojciec/pagedoc"
	"golang.org/x/sync/errgroup"
)

// Sentinel is the literal value a translation call returns for text that
// is already in the target language, so no-ops are detected without a
// second round trip.
const Sentinel = "__NO_TRANSLATION_NEEDED__"

const batchSystemInstruction = "You are a professional translator. " +
	"Translate every item into %s. Rules: preserve all markup tags exactly as they appear; " +
	"never translate URLs, code, or attribute values; keep numbers and proper nouns intact. " +
	"Respond with a JSON array of strings, one translated string per input item, in the same order. " +
	"If an item is already in %s, use the literal string %q for that item. " +
	"Respond with the JSON array only, no commentary."

const phraseSystemInstruction = "You are a professional translator. " +
	"Translate the text into %s. Rules: preserve all markup tags exactly as they appear; " +
	"never translate URLs, code, or attribute values. " +
	"If the text is already in %s, respond with exactly %q. " +
	"Respond with the translation only, no commentary."

// ProgressFunc receives cumulative and total chunk character weight as
// translation proceeds. Values are monotonically non-decreasing.
type ProgressFunc func(done, total int)

// Engine translates extraction results through a language-model provider.
type Engine struct {
	Provider pagedoc.Provider
	Model    string
	Retry    pagedoc.RetryPolicy

	// Character budget per chunk. Zero means DefaultChunkBudget.
	ChunkBudget int

	Logger *slog.Logger
}

// Translate rewrites result's text fields into the target language in
// place. Title and author are translated concurrently; content text is
// chunked and translated sequentially with per-chunk graceful degradation.
// Credential failures abort and propagate; any other chunk failure keeps
// that chunk's original text and the run continues.
func (e *Engine) Translate(ctx context.Context, result *pagedoc.ExtractionResult, targetLang string, progress func(done, total int)) error {
	if result == nil {
		return pagedoc.Errorf(pagedoc.EINVALID, "nil extraction result")
	}
	if !pagedoc.ValidLanguageCode(targetLang) {
		return pagedoc.Errorf(pagedoc.EINVALID, "invalid target language code %q", targetLang)
	}
	targetName := pagedoc.LanguageName(targetLang)

	if err := e.translateMetadata(ctx, result, targetName); err != nil {
		return err
	}

	refs := pagedoc.CollectTextRefs(result)
	chunks := PackChunks(refs, e.ChunkBudget)

	total := 0
	for i := range chunks {
		total += chunks[i].Size()
	}

	done := 0
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return pagedoc.Errorf(pagedoc.ECANCELED, "canceled during translation")
		}

		if err := e.translateChunk(ctx, result, &chunks[i], targetName); err != nil {
			if pagedoc.IsAuthError(err) {
				return err
			}
			// Partial-success policy: already-translated chunks stay
			// translated, this chunk keeps its original text.
			e.log().Warn("chunk translation failed, keeping original text",
				"chunk", i,
				"refs", len(chunks[i].Refs),
				"error", err,
			)
		}

		done += chunks[i].Size()
		if progress != nil {
			progress(done, total)
		}
	}

	return nil
}

// translateMetadata translates title and author concurrently. Metadata is
// small and order-independent, so fan-out is safe; a credential failure on
// either aborts the whole translate step.
func (e *Engine) translateMetadata(ctx context.Context, result *pagedoc.ExtractionResult, targetName string) error {
	g, gctx := errgroup.WithContext(ctx)

	translateField := func(name string, value *string) {
		if *value == "" {
			return
		}
		g.Go(func() error {
			translated, err := e.translatePhrase(gctx, *value, targetName)
			if err != nil {
				if pagedoc.IsAuthError(err) {
					return err
				}
				e.log().Warn("metadata translation failed, keeping original",
					"field", name,
					"error", err,
				)
				return nil
			}
			*value = translated
			return nil
		})
	}

	translateField("title", &result.Title)
	translateField("author", &result.Author)

	return g.Wait()
}

// translatePhrase translates a single piece of text with sentinel
// short-circuit and the hallucination guard applied.
func (e *Engine) translatePhrase(ctx context.Context, text, targetName string) (string, error) {
	out, err := pagedoc.CallWithRetry(ctx, e.Retry, func(ctx context.Context) (string, error) {
		return e.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             e.Model,
			SystemInstruction: fmt.Sprintf(phraseSystemInstruction, targetName, targetName, Sentinel),
			UserContent:       text,
		})
	})
	if err != nil {
		return "", err
	}
	return applyTranslation(text, &out), nil
}

// translateChunk translates one chunk and writes results back through the
// refs. Single-ref chunks use a direct call; multi-ref chunks use one
// batched JSON call.
func (e *Engine) translateChunk(ctx context.Context, result *pagedoc.ExtractionResult, chunk *Chunk, targetName string) error {
	if len(chunk.Refs) == 1 {
		ref := &chunk.Refs[0]
		translated, err := e.translatePhrase(ctx, ref.Text, targetName)
		if err != nil {
			return err
		}
		ref.Set(result, translated)
		return nil
	}

	texts := make([]string, len(chunk.Refs))
	for i := range chunk.Refs {
		texts[i] = chunk.Refs[i].Text
	}
	payload, err := json.Marshal(texts)
	if err != nil {
		return pagedoc.Errorf(pagedoc.EINTERNAL, "failed to encode chunk: %v", err)
	}

	out, err := pagedoc.CallWithRetry(ctx, e.Retry, func(ctx context.Context) (string, error) {
		return e.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             e.Model,
			SystemInstruction: fmt.Sprintf(batchSystemInstruction, targetName, targetName, Sentinel),
			UserContent:       string(payload),
		})
	})
	if err != nil {
		return err
	}

	parsed := ParseBatchResponse(out, len(chunk.Refs))
	if parsed.Outcome == ParseFailure {
		return pagedoc.Errorf(pagedoc.EINTERNAL, "unparseable batch response")
	}
	if parsed.Outcome == ParsePartial {
		e.log().Debug("batch response needed repair", "refs", len(chunk.Refs))
	}

	for i := range chunk.Refs {
		ref := &chunk.Refs[i]
		ref.Set(result, applyTranslation(ref.Text, parsed.Items[i]))
	}
	return nil
}

// applyTranslation resolves one translated slot against its original:
// missing or sentinel values keep the original, everything else passes
// through the hallucination guard.
func applyTranslation(original string, translated *string) string {
	if translated == nil || *translated == "" || *translated == Sentinel {
		return original
	}
	return GuardTranslation(original, *translated)
}

func (e *Engine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
