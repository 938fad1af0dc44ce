// Package cache provides a TTL cache for computed team rates.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/smart-picks/internal/metrics"
	"github.com/yourusername/smart-picks/internal/models"
	"github.com/yourusername/smart-picks/internal/picks"
)

// Key identifies a cached team rate
type Key struct {
	Team       string
	League     string
	Market     models.Market
	WindowSize int
}

// String returns string representation of cache key
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.Market, strings.ToLower(k.League), strings.ToLower(k.Team), k.WindowSize)
}

// TeamRateCache caches derived team rates between cycles. Entries expire after
// the TTL so new results are picked up; the cache is never a source of truth.
type TeamRateCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex // serializes eviction
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewTeamRateCache creates a new team rate cache
func NewTeamRateCache(ttl time.Duration, maxSize int) *TeamRateCache {
	return &TeamRateCache{
		cache:   gocache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached rate
func (c *TeamRateCache) Get(key Key) (picks.TeamRate, bool) {
	if v, found := c.cache.Get(key.String()); found {
		if rate, ok := v.(picks.TeamRate); ok {
			c.hitCount.Add(1)
			c.updateMetrics()
			return rate, true
		}
	}

	c.missCount.Add(1)
	c.updateMetrics()
	return picks.TeamRate{}, false
}

// Set stores a rate. When the cache is full expired entries are purged first,
// and if that is not enough the new entry is dropped.
func (c *TeamRateCache) Set(key Key, rate picks.TeamRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxSize {
			return
		}
	}

	c.cache.Set(key.String(), rate, c.ttl)
}

// Invalidate removes every entry for market
func (c *TeamRateCache) Invalidate(market models.Market) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := string(market) + "|"
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (c *TeamRateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.hitCount.Store(0)
	c.missCount.Store(0)
}

// Stats returns cache statistics
func (c *TeamRateCache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *TeamRateCache) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *TeamRateCache) updateMetrics() {
	_, _, ratio := c.Stats()
	metrics.UpdateRateCacheHitRatio(ratio)
}
