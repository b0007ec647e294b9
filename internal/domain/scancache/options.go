package scancache

// Option applies a configuration option to the in-memory cache.
type Option func(*inMemoryCache)

// WithMaxSize sets how many extractions are kept.
// If maxSize > 0 the oldest entry is evicted once the cache is full.
// If maxSize <= 0 the cache never evicts.
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		c.maxSize = maxSize
	}
}

// WithOnResize registers a callback invoked with the new entry count after
// every insert or eviction.
func WithOnResize(fn func(size int64)) Option {
	return func(c *inMemoryCache) {
		c.onResize = fn
	}
}
