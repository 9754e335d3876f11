// Package detect provides model-backed language detection. It is the
// online tier of the detection chain: used only when a credential is
// available, always guarded by the offline fallback.
package detect

import (
	"context"
	"strings"

	"github.com/fwojciec/pagedoc"
)

// maxSampleChars bounds how much stripped text is sent to the model.
const maxSampleChars = 30000

const systemInstruction = "You are a language identification system. " +
	"Identify the dominant language of the text. " +
	"Respond with exactly one ISO 639-1 two-letter lowercase language code and nothing else."

// Ensure ModelDetector implements pagedoc.LanguageDetector at compile time.
var _ pagedoc.LanguageDetector = (*ModelDetector)(nil)

// ModelDetector asks a language model to identify the language of a text
// sample. Responses failing the strict two-letter-lowercase check are
// rejected so the caller can fall back to offline detection.
type ModelDetector struct {
	Provider pagedoc.Provider
	Model    string
	Retry    pagedoc.RetryPolicy
}

// Detect returns the ISO 639-1 code the model identifies for text.
func (d *ModelDetector) Detect(ctx context.Context, text string) (string, error) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "", pagedoc.Errorf(pagedoc.EINVALID, "empty text sample")
	}
	if len(sample) > maxSampleChars {
		// The byte cut may land inside a rune.
		sample = strings.ToValidUTF8(sample[:maxSampleChars], "")
	}

	out, err := pagedoc.CallWithRetry(ctx, d.Retry, func(ctx context.Context) (string, error) {
		return d.Provider.Generate(ctx, pagedoc.GenerateRequest{
			Model:             d.Model,
			SystemInstruction: systemInstruction,
			UserContent:       sample,
		})
	})
	if err != nil {
		return "", err
	}

	code := strings.ToLower(strings.Trim(strings.TrimSpace(out), "\"'`."))
	if !pagedoc.ValidLanguageCode(code) {
		return "", pagedoc.Errorf(pagedoc.EINTERNAL, "model returned malformed language code %q", out)
	}
	return code, nil
}
