package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/pagedoc/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("added fingerprints are always found", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.001)
		for i := 0; i < 500; i++ {
			f.Add(fmt.Sprintf("fp-%d", i))
		}
		for i := 0; i < 500; i++ {
			assert.True(t, f.Test(fmt.Sprintf("fp-%d", i)))
		}
	})

	t.Run("unseen fingerprints are mostly absent", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.001)
		for i := 0; i < 500; i++ {
			f.Add(fmt.Sprintf("fp-%d", i))
		}

		falsePositives := 0
		for i := 0; i < 1000; i++ {
			if f.Test(fmt.Sprintf("other-%d", i)) {
				falsePositives++
			}
		}
		assert.Less(t, falsePositives, 20)
	})

	t.Run("estimated count tracks additions", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.001)
		for i := 0; i < 100; i++ {
			f.Add(fmt.Sprintf("fp-%d", i))
		}
		count := f.EstimatedCount()
		assert.InDelta(t, 100, float64(count), 15)
	})
}
