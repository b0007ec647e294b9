// Package scancache remembers the ingredient strings read from recently
// scanned label images, keyed by image digest.
package scancache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 256

// Cache stores extraction results by image digest.
type Cache interface {
	// Get returns a copy of the names stored for digest.
	Get(ctx context.Context, digest string) ([]string, bool)

	// Put stores names for digest, replacing any previous entry.
	Put(ctx context.Context, digest string, names []string)

	Size() int64
}

// node is one cached extraction in a doubly linked list ordered by insertion.
type node struct {
	digest     string
	names      []string
	prev, next *node
}

func (n *node) reset() {
	n.digest = ""
	n.names = nil
	n.prev = nil
	n.next = nil
}

// inMemoryCache keeps entries in a map and a list, newest at head.
// Bounded mode (maxSize > 0) evicts from the tail.
type inMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node
	tail     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
	onResize func(size int64)
}

// NewInMemoryCache creates an in-memory cache.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return c
}

func (c *inMemoryCache) Get(_ context.Context, digest string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[digest]
	if !ok {
		return nil, false
	}
	return slices.Clone(n.names), true
}

func (c *inMemoryCache) Put(_ context.Context, digest string, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[digest]; ok {
		n.names = slices.Clone(names)
		c.unlink(n)
		c.pushFront(n)
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.digest = digest
	n.names = slices.Clone(names)
	c.pushFront(n)
	c.entries[digest] = n
	c.resized(c.size.Add(1))
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}

// evictOldest removes the tail. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if c.tail == nil {
		return
	}
	c.remove(c.tail)
	c.size.Add(-1)
}

func (c *inMemoryCache) remove(n *node) {
	delete(c.entries, n.digest)
	c.unlink(n)
	n.reset()
	c.nodePool.Put(n)
}

func (c *inMemoryCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *inMemoryCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

func (c *inMemoryCache) resized(size int64) {
	if c.onResize != nil {
		c.onResize(size)
	}
}
