package pagedoc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLanguageCode(t *testing.T) {
	t.Parallel()

	assert.True(t, pagedoc.ValidLanguageCode("en"))
	assert.True(t, pagedoc.ValidLanguageCode("pl"))
	assert.False(t, pagedoc.ValidLanguageCode("EN"))
	assert.False(t, pagedoc.ValidLanguageCode("eng"))
	assert.False(t, pagedoc.ValidLanguageCode("e"))
	assert.False(t, pagedoc.ValidLanguageCode(""))
	assert.False(t, pagedoc.ValidLanguageCode("e1"))
}

func TestFallbackDetector(t *testing.T) {
	t.Parallel()

	t.Run("first well-formed answer wins", func(t *testing.T) {
		t.Parallel()

		second := 0
		d := &pagedoc.FallbackDetector{Detectors: []pagedoc.LanguageDetector{
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "de", nil
			}},
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				second++
				return "fr", nil
			}},
		}}

		code, err := d.Detect(context.Background(), "hallo welt")

		require.NoError(t, err)
		assert.Equal(t, "de", code)
		assert.Equal(t, 0, second)
	})

	t.Run("malformed code falls through to next detector", func(t *testing.T) {
		t.Parallel()

		d := &pagedoc.FallbackDetector{Detectors: []pagedoc.LanguageDetector{
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "english", nil
			}},
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "es", nil
			}},
		}}

		code, err := d.Detect(context.Background(), "hola mundo")

		require.NoError(t, err)
		assert.Equal(t, "es", code)
	})

	t.Run("failure falls through to next detector", func(t *testing.T) {
		t.Parallel()

		d := &pagedoc.FallbackDetector{Detectors: []pagedoc.LanguageDetector{
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "", errors.New("model unavailable")
			}},
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "it", nil
			}},
		}}

		code, err := d.Detect(context.Background(), "ciao mondo")

		require.NoError(t, err)
		assert.Equal(t, "it", code)
	})

	t.Run("authentication failure propagates immediately", func(t *testing.T) {
		t.Parallel()

		second := 0
		d := &pagedoc.FallbackDetector{Detectors: []pagedoc.LanguageDetector{
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "", &pagedoc.StatusError{Status: 401, Message: "bad key"}
			}},
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				second++
				return "en", nil
			}},
		}}

		_, err := d.Detect(context.Background(), "hello")

		require.Error(t, err)
		assert.True(t, pagedoc.IsAuthError(err))
		assert.Equal(t, 0, second)
	})

	t.Run("defaults to english when every detector fails", func(t *testing.T) {
		t.Parallel()

		d := &pagedoc.FallbackDetector{Detectors: []pagedoc.LanguageDetector{
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "", errors.New("nope")
			}},
		}}

		code, err := d.Detect(context.Background(), "???")

		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})
}
