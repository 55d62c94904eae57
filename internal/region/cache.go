package region

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedClassifier wraps a Classifier with an in-memory LRU cache keyed by
// the normalized address. Feeds repeat addresses when one site hosts several
// stations, and the cache lets those share one classification.
type CachedClassifier struct {
	inner    Classifier
	cache    *lru.Cache[string, Name]
	onLookup func(hit bool)
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// NewCachedClassifier creates a cache decorator around a classifier. onLookup,
// if non-nil, is called after every lookup with whether it was a cache hit.
// A size of zero or less returns an error from the underlying cache.
func NewCachedClassifier(inner Classifier, size int, onLookup func(hit bool)) (*CachedClassifier, error) {
	cache, err := lru.New[string, Name](size)
	if err != nil {
		return nil, err
	}
	return &CachedClassifier{inner: inner, cache: cache, onLookup: onLookup}, nil
}

func (c *CachedClassifier) Classify(address string) Name {
	key := NormalizeChar(address)
	if name, ok := c.cache.Get(key); ok {
		c.record(true)
		return name
	}
	name := c.inner.Classify(address)
	c.cache.Add(key, name)
	c.record(false)
	return name
}

// Stats returns the number of cache hits and misses so far.
func (c *CachedClassifier) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *CachedClassifier) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}
