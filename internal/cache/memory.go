package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

type memoryEntry struct {
	analysis  domain.Analysis
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache is an in-process AnalysisCache used when Redis is not
// configured. Entries expire by TTL; the oldest entry is evicted when the
// cache is full.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 2000
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (domain.Analysis, bool) {
	c.mu.RLock()
	entry, exists := c.entries[fingerprint]
	c.mu.RUnlock()

	if !exists {
		return domain.Analysis{}, false
	}
	if time.Now().UTC().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, fingerprint)
		c.mu.Unlock()
		return domain.Analysis{}, false
	}
	return entry.analysis, true
}

func (c *MemoryCache) Set(_ context.Context, fingerprint string, analysis domain.Analysis, ttl time.Duration) {
	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[fingerprint] = memoryEntry{
		analysis:  analysis,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (c *MemoryCache) evictOldest() {
	if len(c.entries) == 0 {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].createdAt.Before(c.entries[keys[j]].createdAt)
	})
	delete(c.entries, keys[0])
}
