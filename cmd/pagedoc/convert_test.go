package main

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryPolicy() pagedoc.RetryPolicy {
	policy := pagedoc.DefaultRetryPolicy()
	policy.Delays = []time.Duration{time.Nanosecond}
	return policy
}

func TestBuildDetector(t *testing.T) {
	t.Parallel()

	t.Run("model tier leads when a provider is available", func(t *testing.T) {
		t.Parallel()

		offlineCalls := 0
		d := buildDetector(
			&mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "pl", nil
			}},
			"test-model",
			testRetryPolicy(),
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				offlineCalls++
				return "en", nil
			}},
		)

		code, err := d.Detect(context.Background(), "jakiś polski tekst")
		require.NoError(t, err)
		assert.Equal(t, "pl", code)
		assert.Equal(t, 0, offlineCalls)
	})

	t.Run("malformed model answer falls back to the offline tier", func(t *testing.T) {
		t.Parallel()

		d := buildDetector(
			&mock.Provider{GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "I believe this is Polish.", nil
			}},
			"test-model",
			testRetryPolicy(),
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "pl", nil
			}},
		)

		code, err := d.Detect(context.Background(), "jakiś polski tekst")
		require.NoError(t, err)
		assert.Equal(t, "pl", code)
	})

	t.Run("no provider leaves only the offline tier", func(t *testing.T) {
		t.Parallel()

		d := buildDetector(nil, "test-model", testRetryPolicy(),
			&mock.LanguageDetector{DetectFn: func(ctx context.Context, text string) (string, error) {
				return "de", nil
			}},
		)

		require.Len(t, d.Detectors, 1)
		code, err := d.Detect(context.Background(), "etwas deutscher Text")
		require.NoError(t, err)
		assert.Equal(t, "de", code)
	})
}
