package lingua_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagedoc/lingua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector(t *testing.T) {
	t.Parallel()

	d := lingua.NewDetector()

	t.Run("detects common languages", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			want string
			text string
		}{
			{"en", "The quick brown fox jumps over the lazy dog near the riverbank every single morning."},
			{"es", "El rápido zorro marrón salta sobre el perro perezoso cerca del río cada mañana."},
			{"de", "Der schnelle braune Fuchs springt jeden Morgen über den faulen Hund am Flussufer."},
			{"pl", "Szybki brązowy lis przeskakuje nad leniwym psem nad brzegiem rzeki każdego ranka."},
		}
		for _, tt := range tests {
			code, err := d.Detect(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code, "text: %s", tt.text)
		}
	})

	t.Run("short samples default to english", func(t *testing.T) {
		t.Parallel()

		code, err := d.Detect(context.Background(), "hola")
		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})

	t.Run("empty input defaults to english", func(t *testing.T) {
		t.Parallel()

		code, err := d.Detect(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})

	t.Run("digits and punctuation do not count as letters", func(t *testing.T) {
		t.Parallel()

		code, err := d.Detect(context.Background(), "123 456 789 !!! ??? ... 000 111")
		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})
}
