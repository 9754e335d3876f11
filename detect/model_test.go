package detect_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/detect"
	"github.com/fwojciec/pagedoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() pagedoc.RetryPolicy {
	policy := pagedoc.DefaultRetryPolicy()
	policy.Delays = []time.Duration{time.Nanosecond}
	return policy
}

func TestModelDetector(t *testing.T) {
	t.Parallel()

	t.Run("accepts a clean two-letter code", func(t *testing.T) {
		t.Parallel()

		d := &detect.ModelDetector{
			Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "pl", nil
			}},
			Model: "test-model",
			Retry: testPolicy(),
		}

		code, err := d.Detect(context.Background(), "jakiś polski tekst")
		require.NoError(t, err)
		assert.Equal(t, "pl", code)
	})

	t.Run("tolerates quotes whitespace and case", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{` "DE" `, "'de'", "De.", "`de`\n"} {
			d := &detect.ModelDetector{
				Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
					return raw, nil
				}},
				Model: "test-model",
				Retry: testPolicy(),
			}

			code, err := d.Detect(context.Background(), "etwas deutscher Text")
			require.NoError(t, err, "raw: %q", raw)
			assert.Equal(t, "de", code)
		}
	})

	t.Run("rejects prose answers", func(t *testing.T) {
		t.Parallel()

		d := &detect.ModelDetector{
			Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "The language is German.", nil
			}},
			Model: "test-model",
			Retry: testPolicy(),
		}

		_, err := d.Detect(context.Background(), "etwas Text")
		require.Error(t, err)
		assert.Equal(t, pagedoc.EINTERNAL, pagedoc.ErrorCode(err))
	})

	t.Run("rejects empty samples without a model call", func(t *testing.T) {
		t.Parallel()

		calls := 0
		d := &detect.ModelDetector{
			Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				calls++
				return "en", nil
			}},
			Model: "test-model",
			Retry: testPolicy(),
		}

		_, err := d.Detect(context.Background(), "   ")
		require.Error(t, err)
		assert.Equal(t, pagedoc.EINVALID, pagedoc.ErrorCode(err))
		assert.Equal(t, 0, calls)
	})

	t.Run("oversized samples truncate on a rune boundary", func(t *testing.T) {
		t.Parallel()

		var sample string
		d := &detect.ModelDetector{
			Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				sample = req.UserContent
				return "pl", nil
			}},
			Model: "test-model",
			Retry: testPolicy(),
		}

		// An odd byte prefix puts the cut point mid-rune.
		text := "a" + strings.Repeat("ż", 20000)
		_, err := d.Detect(context.Background(), text)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(sample))
		assert.Less(t, len(sample), len(text))
	})

	t.Run("propagates provider failures", func(t *testing.T) {
		t.Parallel()

		d := &detect.ModelDetector{
			Provider: &mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "", &pagedoc.StatusError{Status: 401, Message: "bad key"}
			}},
			Model: "test-model",
			Retry: testPolicy(),
		}

		_, err := d.Detect(context.Background(), "text")
		require.Error(t, err)
		assert.True(t, pagedoc.IsAuthError(err))
	})
}
