// Package sources provides the shared HTTP plumbing for external paper
// metadata sources: per-source request spacing and a retrying fetcher with
// explicit outcome classification.
package sources

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinSpacing is the default minimum spacing between consecutive
// requests to the same external source.
const DefaultMinSpacing = 300 * time.Millisecond

// Governor enforces a minimum spacing between successive outbound calls to
// each external source. State is per source name and shared process-wide:
// concurrent calls to the same source serialize their spacing, calls to
// different sources never block each other. Calls are only ever delayed,
// never dropped.
type Governor struct {
	mu         sync.Mutex
	minSpacing time.Duration
	limiters   map[string]*rate.Limiter
}

// NewGovernor creates a governor with the given minimum spacing.
// A non-positive spacing falls back to DefaultMinSpacing.
func NewGovernor(minSpacing time.Duration) *Governor {
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}
	return &Governor{
		minSpacing: minSpacing,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a call to the named source is allowed or the context is
// cancelled. The first call for a source proceeds immediately; subsequent
// calls are spaced at least minSpacing apart.
func (g *Governor) Wait(ctx context.Context, source string) error {
	return g.limiter(source).Wait(ctx)
}

// limiter returns the limiter for a source, creating it on first use.
// A burst of one token at rate 1/minSpacing yields exactly the minimum
// spacing semantics.
func (g *Governor) limiter(source string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	lim, ok := g.limiters[source]
	if !ok {
		lim = rate.NewLimiter(rate.Every(g.minSpacing), 1)
		g.limiters[source] = lim
	}
	return lim
}
