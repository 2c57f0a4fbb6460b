// Package cache is the catalog's read-through cache. Values are opaque
// bytes so the in-process and Redis backends behave the same.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultMaxEntries = 10000

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Incr bumps a counter that never expires and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

// Memory is an in-process TTL cache. Expired entries are swept at most
// once per TTL on write, and the map never grows past maxEntries expiring
// entries; counters are not evicted.
type Memory struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	m          map[string]entry
	now        func() time.Time
	lastSweep  time.Time
}

type entry struct {
	val []byte
	exp time.Time // zero means no expiry
}

var _ Store = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		m:          make(map[string]entry),
		now:        time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if e.expired(now) {
		c.dropIfExpired(key, now)
		return nil, false, nil
	}

	return e.val, true, nil
}

// dropIfExpired re-reads the entry under the write lock; a Set that landed
// after the read lock was released must survive.
func (c *Memory) dropIfExpired(key string, now time.Time) {
	c.mu.Lock()
	if cur, ok := c.m[key]; ok && cur.expired(now) {
		delete(c.m, key)
	}
	c.mu.Unlock()
}

func (c *Memory) Set(_ context.Context, key string, val []byte) error {
	cp := append([]byte(nil), val...)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweepLocked(now)
	}
	if _, exists := c.m[key]; !exists && len(c.m) >= c.maxEntries {
		c.sweepLocked(now)
		c.evictLocked(len(c.m) - c.maxEntries + 1)
	}

	c.m[key] = entry{val: cp, exp: now.Add(c.ttl)}
	return nil
}

func (c *Memory) sweepLocked(now time.Time) {
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
	c.lastSweep = now
}

// evictLocked drops up to n expiring entries in map order.
func (c *Memory) evictLocked(n int) {
	for k, e := range c.m {
		if n <= 0 {
			return
		}
		if e.exp.IsZero() {
			continue
		}
		delete(c.m, k)
		n--
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

func (c *Memory) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.m, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Memory) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.m {
		if strings.HasPrefix(k, prefix) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Memory) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if e, ok := c.m[key]; ok {
		parsed, err := strconv.ParseInt(string(e.val), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	c.m[key] = entry{val: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

func (c *Memory) Ping(context.Context) error { return nil }

func (c *Memory) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
