// Package memory provides the in-process artifact cache: TTL
// expiration with LRU eviction under a fixed entry budget. It is the
// default backend when no Redis address is configured.
package memory

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deckster/chartgen/domain/cache"
)

// Cache is an in-memory implementation of cache.Cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewCache creates a cache holding at most maxEntries values. A
// non-positive budget means unbounded.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxEntries,
		now:     time.Now,
	}
}

// Get retrieves a cached value by key. Expired entries are removed on
// access and report a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}

	e := el.Value.(*entry)
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.removeLocked(el)
		c.misses.Add(1)
		return nil, false, nil
	}

	c.order.MoveToFront(el)
	c.hits.Add(1)

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true, nil
}

// Set stores a value, evicting the least recently used entry when the
// budget is full.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	var expiresAt time.Time
	if opts.TTL > 0 {
		expiresAt = c.now().Add(opts.TTL)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = stored
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	if c.maxSize > 0 && c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	el := c.order.PushFront(&entry{key: key, value: stored, expiresAt: expiresAt})
	c.entries[key] = el
	return nil
}

// Delete removes a cached entry by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	return nil
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	c.mu.Lock()
	size := int64(c.order.Len())
	c.mu.Unlock()

	return cache.Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Size:    size,
		MaxSize: int64(c.maxSize),
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.entries, e.key)
	c.order.Remove(el)
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
