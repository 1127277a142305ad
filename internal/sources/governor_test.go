package sources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernor_Wait(t *testing.T) {
	t.Run("first call proceeds immediately", func(t *testing.T) {
		g := NewGovernor(100 * time.Millisecond)

		start := time.Now()
		require.NoError(t, g.Wait(context.Background(), "openalex"))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("consecutive calls to same source are spaced", func(t *testing.T) {
		g := NewGovernor(100 * time.Millisecond)
		ctx := context.Background()

		require.NoError(t, g.Wait(ctx, "crossref"))
		start := time.Now()
		require.NoError(t, g.Wait(ctx, "crossref"))
		elapsed := time.Since(start)

		assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond,
			"second call should wait for spacing, waited only %v", elapsed)
	})

	t.Run("different sources never block each other", func(t *testing.T) {
		g := NewGovernor(200 * time.Millisecond)
		ctx := context.Background()

		require.NoError(t, g.Wait(ctx, "openalex"))
		start := time.Now()
		require.NoError(t, g.Wait(ctx, "crossref"))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation while waiting", func(t *testing.T) {
		g := NewGovernor(time.Second)
		require.NoError(t, g.Wait(context.Background(), "openalex"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := g.Wait(ctx, "openalex")
		require.Error(t, err)
	})

	t.Run("defaults spacing when non-positive", func(t *testing.T) {
		g := NewGovernor(0)
		assert.Equal(t, DefaultMinSpacing, g.minSpacing)
	})
}
