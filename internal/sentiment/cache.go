package sentiment

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/socialdoc/flock/internal/metrics"
)

// resultCache holds computed prevalences under a TTL. Quantify aggregates
// over the whole posts collection, so identical queries inside the window are
// answered from memory instead of re-scanning the store.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	value     Prevalence
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, clock clockwork.Clock) *resultCache {
	return &resultCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached prevalence when present and fresh.
func (c *resultCache) Get(key string) (Prevalence, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		// expired entries stay until the next eviction pass; read lock only
		return Prevalence{}, false
	}
	return entry.value, true
}

func (c *resultCache) Set(key string, value Prevalence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	metrics.QuantifyCacheSize.Set(float64(len(c.entries)))
}

// EvictExpired drops all expired entries and returns how many went.
func (c *resultCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	metrics.QuantifyCacheEvictions.Add(float64(evicted))
	metrics.QuantifyCacheSize.Set(float64(len(c.entries)))
	return evicted
}

// StartEviction runs periodic eviction until ctx is done.
func (c *resultCache) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := c.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.EvictExpired()
			}
		}
	}()
}
