// Package cache is the process-wide key-value cache used for read-through
// caching of the home feed.
//
// Entries expire after a TTL. Callers invalidate entries explicitly when the
// underlying data changes; nothing is updated in place.
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores values of type V by string key.
type Cache[V any] interface {
	Get(key string) (V, error)
	Set(key string, value V) error
	Delete(key string) error
}

// Config controls a Memory cache.
type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Stats are simple counters for diagnostics.
type Stats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// Memory is an in-memory Cache guarded by an RWMutex.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

// NewMemory creates a Memory cache. Zero values default to a 10 minute TTL
// and 100 entries.
func NewMemory[V any](c Config) *Memory[V] {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	return &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// Get returns the cached value or ErrMiss.
func (c *Memory[V]) Get(key string) (V, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return zero, ErrMiss
	}
	if c.now().Sub(e.cachedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		c.expire(key, e.cachedAt)
		return zero, ErrMiss
	}

	atomic.AddInt64(&c.hits, 1)
	return e.value, nil
}

// expire removes key unless it was re-set after cachedAt.
func (c *Memory[V]) expire(key string, cachedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.cachedAt.Equal(cachedAt) {
		delete(c.entries, key)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Set stores value under key. When the cache is full an arbitrary entry is
// evicted first.
func (c *Memory[V]) Set(key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.entries[key] = entry[V]{value: value, cachedAt: c.now()}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Memory[V]) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Memory[V]) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
