// Package lingua provides offline language detection backed by the
// pemistahl/lingua-go statistical models. It is the zero-cost tier of the
// detection chain: no credential, no network, deterministic output.
package lingua

import (
	"context"
	"strings"
	"unicode"

	"github.com/fwojciec/pagedoc"
	"github.com/pemistahl/lingua-go"
)

// minSampleLetters is the minimum number of letters required before the
// statistical models are consulted. Shorter samples default to English
// rather than risk a confident-looking wrong answer.
const minSampleLetters = 20

// maxSampleChars bounds the text handed to the models. Detection accuracy
// plateaus quickly; analyzing a whole article buys nothing.
const maxSampleChars = 4000

// Ensure Detector implements pagedoc.LanguageDetector at compile time.
var _ pagedoc.LanguageDetector = (*Detector)(nil)

// Detector detects languages offline using lingua's statistical models.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector creates a Detector covering all languages lingua supports.
// Building the models is not free, so construct once and reuse.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithLowAccuracyMode().
			Build(),
	}
}

// Detect returns the ISO 639-1 code of the dominant language in text.
// Returns "en" when the sample is too short to classify reliably.
func (d *Detector) Detect(_ context.Context, text string) (string, error) {
	sample := sampleText(text)
	if letterCount(sample) < minSampleLetters {
		return "en", nil
	}

	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return "en", nil
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if !pagedoc.ValidLanguageCode(code) {
		return "en", nil
	}
	return code, nil
}

func sampleText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxSampleChars {
		// The byte cut may land inside a rune.
		text = strings.ToValidUTF8(text[:maxSampleChars], "")
	}
	return text
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
