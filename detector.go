package pagedoc

import "context"

// LanguageDetector determines the dominant language of extracted text.
type LanguageDetector interface {
	// Detect returns an ISO 639-1 code for the given text sample.
	Detect(ctx context.Context, text string) (string, error)
}

// FallbackDetector chains detectors so that the pipeline never blocks on a
// flaky model call for something as cheap as language detection. The first
// detector to return a well-formed two-letter code wins; a final "en"
// default guarantees a usable answer.
type FallbackDetector struct {
	Detectors []LanguageDetector
}

// Ensure FallbackDetector implements LanguageDetector at compile time.
var _ LanguageDetector = (*FallbackDetector)(nil)

// Detect tries each detector in order. Authentication errors propagate
// immediately (the whole run must abort); any other failure or malformed
// response falls through to the next detector.
func (d *FallbackDetector) Detect(ctx context.Context, text string) (string, error) {
	for _, det := range d.Detectors {
		code, err := det.Detect(ctx, text)
		if err != nil {
			if IsAuthError(err) {
				return "", err
			}
			continue
		}
		if ValidLanguageCode(code) {
			return code, nil
		}
	}
	return "en", nil
}

// ValidLanguageCode reports whether code is exactly two lowercase ASCII
// letters, the strict ISO 639-1 shape model responses must match.
func ValidLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'a' || code[i] > 'z' {
			return false
		}
	}
	return true
}
