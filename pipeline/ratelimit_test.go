package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/mock"
	"github.com/fwojciec/pagedoc/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedProvider(t *testing.T) {
	t.Parallel()

	t.Run("delegates to the wrapped provider", func(t *testing.T) {
		t.Parallel()

		p := pipeline.NewLimitedProvider(&mock.Provider{
			GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "out", nil
			},
		}, 100)

		out, err := p.Generate(context.Background(), pagedoc.GenerateRequest{Model: "m"})
		require.NoError(t, err)
		assert.Equal(t, "out", out)
	})

	t.Run("paces consecutive calls", func(t *testing.T) {
		t.Parallel()

		p := pipeline.NewLimitedProvider(&mock.Provider{
			GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				return "out", nil
			},
		}, 20) // 50ms between calls

		begin := time.Now()
		for i := 0; i < 3; i++ {
			_, err := p.Generate(context.Background(), pagedoc.GenerateRequest{Model: "m"})
			require.NoError(t, err)
		}
		// burst of 1, so the second and third calls each wait ~50ms
		assert.GreaterOrEqual(t, time.Since(begin), 80*time.Millisecond)
	})

	t.Run("cancellation while waiting returns ECANCELED", func(t *testing.T) {
		t.Parallel()

		calls := 0
		p := pipeline.NewLimitedProvider(&mock.Provider{
			GenerateFn: func(ctx context.Context, req pagedoc.GenerateRequest) (string, error) {
				calls++
				return "out", nil
			},
		}, 0.001)

		// first call consumes the burst token
		_, err := p.Generate(context.Background(), pagedoc.GenerateRequest{Model: "m"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.Generate(ctx, pagedoc.GenerateRequest{Model: "m"})
		require.Error(t, err)
		assert.Equal(t, pagedoc.ECANCELED, pagedoc.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})
}
