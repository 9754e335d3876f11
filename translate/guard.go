package translate

import (
	"strings"
	"unicode/utf8"
)

// Hallucination guard tolerances. A translation of a short phrase should
// never be dramatically longer than its source; when it is, the model has
// started writing rather than translating. The 3x ratio is an empirical,
// provider-dependent tolerance rather than a semantically meaningful
// constant.
const (
	shortPhraseMaxChars = 200
	maxGrowthRatio      = 3
)

// GuardTranslation protects short single-line phrases (titles, bylines)
// against runaway model output. Long or multi-line source text is returned
// untouched: growth there is legitimate. For a ballooned short phrase it
// salvages the first line or sentence; if the salvage is still outside the
// sane length band the original text wins.
func GuardTranslation(original, translated string) string {
	if original == "" || translated == "" {
		return translated
	}
	if !isShortPhrase(original) {
		return translated
	}

	origLen := utf8.RuneCountInString(original)
	if utf8.RuneCountInString(translated) <= origLen*maxGrowthRatio {
		return translated
	}

	salvaged := salvageFirstUnit(translated)
	if salvaged != "" && utf8.RuneCountInString(salvaged) <= origLen*maxGrowthRatio {
		return salvaged
	}

	return original
}

func isShortPhrase(s string) bool {
	return utf8.RuneCountInString(s) < shortPhraseMaxChars &&
		!strings.ContainsRune(s, '\n')
}

// salvageFirstUnit returns the first line of s, or its first sentence when
// the whole output is a single run-on line.
func salvageFirstUnit(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return strings.TrimSpace(s[:i])
	}
	for _, sep := range []string{". ", "! ", "? "} {
		if i := strings.Index(s, sep); i != -1 {
			return strings.TrimSpace(s[:i+1])
		}
	}
	return s
}
