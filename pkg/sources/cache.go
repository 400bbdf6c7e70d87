package sources

import (
	"context"
	"strings"
	"sync"
)

// Cached memoizes DOI lookups for the lifetime of one run, so a record
// consulted by several operations costs a single request per source.
// Misses (nil, nil) are cached too. Search is deliberately not cached;
// queries rarely repeat within a run.
type Cached struct {
	source Source

	mu      sync.Mutex
	entries map[string]*RawMetadata
}

// WithCache wraps source with a per-run DOI lookup cache.
func WithCache(source Source) *Cached {
	return &Cached{source: source, entries: make(map[string]*RawMetadata)}
}

// Name returns the wrapped source's name.
func (c *Cached) Name() string { return c.source.Name() }

// LookupDOI returns the cached result for the DOI or performs and caches
// the lookup. Errors are not cached so a transient failure does not poison
// the rest of the run.
func (c *Cached) LookupDOI(ctx context.Context, doi string) (*RawMetadata, error) {
	key := strings.ToLower(strings.TrimSpace(doi))

	c.mu.Lock()
	if meta, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return meta, nil
	}
	c.mu.Unlock()

	meta, err := c.source.LookupDOI(ctx, doi)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = meta
	c.mu.Unlock()
	return meta, nil
}

// Search delegates without caching.
func (c *Cached) Search(ctx context.Context, query string, limit int) ([]RawMetadata, error) {
	return c.source.Search(ctx, query, limit)
}

var (
	_ Source = (*Cached)(nil)
	_ Source = (*Limited)(nil)
)
