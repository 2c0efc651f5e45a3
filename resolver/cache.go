package resolver

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"git.thinkinpower.net/cardbin/metrics"
	"git.thinkinpower.net/cardbin/mod"
)

// Cache memoizes successful lookups by BIN prefix without eviction. Concurrent
// lookups of the same prefix share one upstream call; failures are not kept.
type Cache struct {
	upstream Resolver

	mu      sync.RWMutex
	entries map[string]mod.BinLookup

	group singleflight.Group
	calls atomic.Int64
}

func NewCache(upstream Resolver) *Cache {
	return &Cache{upstream: upstream, entries: make(map[string]mod.BinLookup)}
}

// Get returns a memoized lookup.
func (c *Cache) Get(bin string) (*mod.BinLookup, bool) {
	c.mu.RLock()
	v, ok := c.entries[bin]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Resolve answers from memory or calls upstream. The context of the caller that
// starts a shared call governs that call.
func (c *Cache) Resolve(ctx context.Context, bin string) (*mod.BinLookup, error) {
	if v, ok := c.Get(bin); ok {
		metrics.ObserveCacheHit()
		return v, nil
	}
	v, err, _ := c.group.Do(bin, func() (interface{}, error) {
		c.calls.Add(1)
		res, err := c.upstream.Resolve(ctx, bin)
		if err != nil {
			metrics.ObserveLookup(metrics.LookupError)
			return nil, err
		}
		metrics.ObserveLookup(metrics.LookupSuccess)
		c.Put(bin, res)
		return clone(*res), nil
	})
	if err != nil {
		return nil, err
	}
	return clone(*v.(*mod.BinLookup)), nil
}

// Put stores a lookup; the last writer wins.
func (c *Cache) Put(bin string, v *mod.BinLookup) {
	if v == nil {
		return
	}
	c.mu.Lock()
	c.entries[bin] = *clone(*v)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Calls counts upstream calls issued.
func (c *Cache) Calls() int64 {
	return c.calls.Load()
}

func clone(v mod.BinLookup) *mod.BinLookup {
	networks := make([]mod.RawNetworkRecord, len(v.Networks))
	copy(networks, v.Networks)
	return &mod.BinLookup{FirstDigits: v.FirstDigits, Networks: networks}
}
