package translate_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pagedoc/translate"
	"github.com/stretchr/testify/assert"
)

func TestGuardTranslation(t *testing.T) {
	t.Parallel()

	t.Run("passes sane translations through", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Bonjour le monde", translate.GuardTranslation("Hello world", "Bonjour le monde"))
	})

	t.Run("long source text is never guarded", func(t *testing.T) {
		t.Parallel()

		original := strings.Repeat("word ", 60) // over the short-phrase limit
		translated := strings.Repeat("mot ", 400)
		assert.Equal(t, translated, translate.GuardTranslation(original, translated))
	})

	t.Run("multi-line source text is never guarded", func(t *testing.T) {
		t.Parallel()

		original := "line one\nline two"
		translated := strings.Repeat("beaucoup de texte ", 50)
		assert.Equal(t, translated, translate.GuardTranslation(original, translated))
	})

	t.Run("salvages the first line of a ballooned title", func(t *testing.T) {
		t.Parallel()

		original := "Breaking News"
		translated := "Dernières Nouvelles\n\n" + strings.Repeat("Le modèle raconte une histoire. ", 20)

		assert.Equal(t, "Dernières Nouvelles", translate.GuardTranslation(original, translated))
	})

	t.Run("salvages the first sentence of a run-on line", func(t *testing.T) {
		t.Parallel()

		original := "Breaking News"
		translated := "Dernières Nouvelles. " + strings.Repeat("Et ensuite le modèle continue encore et encore ", 10)

		assert.Equal(t, "Dernières Nouvelles.", translate.GuardTranslation(original, translated))
	})

	t.Run("keeps the original when salvage is still too long", func(t *testing.T) {
		t.Parallel()

		original := "Hi"
		translated := strings.Repeat("une très longue phrase sans aucune ponctuation ", 10)

		assert.Equal(t, original, translate.GuardTranslation(original, translated))
	})

	t.Run("empty inputs pass through", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", translate.GuardTranslation("Hello", ""))
		assert.Equal(t, "x", translate.GuardTranslation("", "x"))
	})
}
