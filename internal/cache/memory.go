package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/claimify/internal/model"
)

// MemoryCache keeps verdicts in process memory with per-entry expiry.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the cached result.
func (c *MemoryCache) Get(key string) (model.FactCheckResult, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return model.FactCheckResult{}, false
	}
	res, ok := val.(model.FactCheckResult)
	if !ok {
		return model.FactCheckResult{}, false
	}
	return cloneResult(res), true
}

// Set stores a result. A zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, res model.FactCheckResult, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, cloneResult(res), ttl)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of entries, expired ones included until cleanup.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

func cloneResult(r model.FactCheckResult) model.FactCheckResult {
	out := r
	if r.Confidence != nil {
		v := *r.Confidence
		out.Confidence = &v
	}
	out.Citations = append([]model.Citation(nil), r.Citations...)
	return out
}
