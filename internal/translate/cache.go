package translate

import (
	"context"
	"sync"
)

// cache holds loaded translators keyed by backend spec. At most one load runs
// per key at a time; concurrent resolvers for the same key wait for the first
// load instead of starting their own. Failed loads are not cached, so a later
// attempt retries the backend.
type cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready      chan struct{}
	translator Translator
	err        error
}

func newCache() *cache {
	return &cache{entries: make(map[string]*cacheEntry)}
}

// lookup returns a successfully loaded translator without triggering a load.
func (c *cache) lookup(key string) (Translator, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-entry.ready:
		if entry.err == nil {
			return entry.translator, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// getOrLoad returns the cached translator for key, or runs load exactly once
// and caches the result. Waiters observe the loader's outcome.
func (c *cache) getOrLoad(ctx context.Context, key string, load func(context.Context) (Translator, error)) (Translator, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-entry.ready:
			return entry.translator, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	entry := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	entry.translator, entry.err = load(ctx)
	if entry.err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
	close(entry.ready)
	return entry.translator, entry.err
}
