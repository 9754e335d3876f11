package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/pagedoc"
)

// maxSummaryInputChars bounds the article text sent for summarization.
const maxSummaryInputChars = 60000

const summarySystemInstruction = "You are an expert editor. " +
	"Write a concise summary of the article in 3-5 sentences, in %s. " +
	"Cover the main argument and key facts only. Respond with the summary text, no preamble."

// summarize asks the model for a short summary and stores it on the
// result. The summary language follows the target language when
// translation was requested, otherwise the detected page language.
func (r *Runner) summarize(ctx context.Context, result *pagedoc.ExtractionResult, targetLang string) error {
	lang := targetLang
	if lang == "" {
		lang = result.DetectedLanguage
	}
	if lang == "" {
		lang = "en"
	}

	text := result.PlainText()
	if strings.TrimSpace(text) == "" {
		return pagedoc.Errorf(pagedoc.EEMPTY, "nothing to summarize")
	}
	if len(text) > maxSummaryInputChars {
		// The byte cut may land inside a rune.
		text = strings.ToValidUTF8(text[:maxSummaryInputChars], "")
	}

	summary, err := pagedoc.CallWithRetry(ctx, r.Retry, func(ctx context.Context) (string, error) {
		return r.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             r.Model,
			SystemInstruction: fmt.Sprintf(summarySystemInstruction, pagedoc.LanguageName(lang)),
			UserContent:       text,
		})
	})
	if err != nil {
		return err
	}

	result.Summary = strings.TrimSpace(summary)
	return nil
}
