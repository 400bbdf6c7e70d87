package sources

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited wraps a Source behind a token-bucket limiter. Every call blocks
// on the limiter before reaching the wrapped source, so the per-source
// request interval holds even when records are enriched concurrently.
type Limited struct {
	source  Source
	limiter *rate.Limiter
}

// Limit wraps source with a limiter of the given rate and burst 1. A
// non-positive limit disables rate limiting.
func Limit(source Source, limit rate.Limit) Source {
	if limit <= 0 {
		return source
	}
	return &Limited{source: source, limiter: rate.NewLimiter(limit, 1)}
}

// Name returns the wrapped source's name.
func (l *Limited) Name() string { return l.source.Name() }

// LookupDOI waits for the limiter, then delegates.
func (l *Limited) LookupDOI(ctx context.Context, doi string) (*RawMetadata, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.source.LookupDOI(ctx, doi)
}

// Search waits for the limiter, then delegates.
func (l *Limited) Search(ctx context.Context, query string, limit int) ([]RawMetadata, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.source.Search(ctx, query, limit)
}
