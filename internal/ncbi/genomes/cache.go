package genomes

import (
	"sync"

	"github.com/jlaffaye/ftp"
	"golang.org/x/sync/singleflight"
)

// ListingCache memoizes assembly directory listings keyed by absolute remote
// path. Published assembly directories never change, so entries live for the
// cache's lifetime and there is no eviction.
//
// The cache is safe for concurrent use: when organisms are resolved in
// parallel, the first caller for a path performs the network listing and
// every concurrent caller for the same path waits for that result, keeping
// the at-most-one-listing-per-path guarantee.
type ListingCache struct {
	mu       sync.RWMutex
	listings map[string][]*ftp.Entry
	flight   singleflight.Group

	hits   int64
	misses int64
}

// CacheStats reports cache effectiveness for end-of-run diagnostics.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// NewListingCache creates an empty listing cache.
func NewListingCache() *ListingCache {
	return &ListingCache{listings: make(map[string][]*ftp.Entry)}
}

// GetOrFetch returns the cached listing for path, fetching and storing it on
// first use. Only successful listings are cached; a failed fetch is reported
// to every waiter and the next call tries again.
func (c *ListingCache) GetOrFetch(path string, fetch func() ([]*ftp.Entry, error)) ([]*ftp.Entry, error) {
	c.mu.RLock()
	listing, ok := c.listings[path]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return listing, nil
	}

	v, err, _ := c.flight.Do(path, func() (interface{}, error) {
		// A concurrent caller may have populated the entry between the
		// read above and winning the flight.
		c.mu.RLock()
		listing, ok := c.listings[path]
		c.mu.RUnlock()
		if ok {
			return listing, nil
		}

		entries, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.listings[path] = entries
		c.misses++
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*ftp.Entry), nil
}

// Stats returns a snapshot of cache counters.
func (c *ListingCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.listings)}
}
