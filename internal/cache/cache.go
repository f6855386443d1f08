package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// DiscoveryCache memoises the candidate sitemap URLs discovered for a
// base URL. Entries live for the lifetime of the cache; there is no TTL
// or invalidation. An empty candidate list is never stored, so a failed
// discovery is probed again on the next call.
type DiscoveryCache struct {
	mu       sync.RWMutex
	sitemaps map[string][]string
	flight   singleflight.Group
}

// NewDiscoveryCache creates and returns an empty DiscoveryCache.
func NewDiscoveryCache() *DiscoveryCache {
	return &DiscoveryCache{
		sitemaps: make(map[string][]string),
	}
}

// Get retrieves the cached candidate list for a base URL.
// It returns a copy and true if the entry exists, otherwise nil and false.
func (c *DiscoveryCache) Get(baseURL string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	urls, found := c.sitemaps[baseURL]
	if !found {
		return nil, false
	}
	return append([]string(nil), urls...), true
}

// Set stores the candidate list for a base URL. Empty lists are
// discarded so the next caller runs discovery again.
func (c *DiscoveryCache) Set(baseURL string, urls []string) {
	if len(urls) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sitemaps[baseURL] = append([]string(nil), urls...)
}

// Len returns the number of base URLs with cached candidates.
func (c *DiscoveryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sitemaps)
}

// Clear drops every cached entry. There is no TTL, so this is the only
// way to force rediscovery of a site that has moved its sitemaps.
func (c *DiscoveryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sitemaps = make(map[string][]string)
}

// Memoize returns the cached candidate list for a base URL, running
// discover on a miss. Concurrent misses for the same base URL share a
// single discover call. The returned bool reports whether the result
// came from the cache.
func (c *DiscoveryCache) Memoize(baseURL string, discover func() []string) ([]string, bool) {
	if urls, found := c.Get(baseURL); found {
		return urls, true
	}

	v, _, _ := c.flight.Do(baseURL, func() (any, error) {
		// A concurrent caller may have populated the entry while we
		// waited on the flight group.
		if urls, found := c.Get(baseURL); found {
			return urls, nil
		}
		urls := discover()
		c.Set(baseURL, urls)
		return urls, nil
	})

	urls, _ := v.([]string)
	return urls, false
}
