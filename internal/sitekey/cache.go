// internal/sitekey/cache.go
//
// TTL read cache in front of the Key Resolver.
//
// Context
// -------
// Every public request starts with a key resolution, so the hot path keeps
// resolutions in a sync.Map keyed by (language, key).  Cold or stale
// entries reload through singleflight, so a burst of requests for the same
// key produces one store round-trip.  Writers never consult the cache;
// staleness is bounded by the TTL.
//
// Negative results are not cached: a missing key is already the cheap path
// (single indexed lookup), and caching it would delay newly provisioned
// sites by up to a TTL.

package sitekey

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/veresdaniel/hellolocal/internal/metrics"
)

// DefaultCacheTTL bounds how long a renamed or deactivated key keeps
// resolving from memory.
const DefaultCacheTTL = 5 * time.Minute

// Source is the narrow contract Cache needs from the resolver.
type Source interface {
	Resolve(ctx context.Context, language, publicKey string) (*Resolution, error)
}

type cacheEntry struct {
	res      *Resolution
	loadedAt time.Time
}

// Cache wraps a Source with TTL-bounded memoization.  Zero value is
// unusable; construct with NewCache.
type Cache struct {
	src Source
	sfg singleflight.Group
	m   sync.Map // "lang\x00key" → *cacheEntry
	ttl time.Duration
}

// NewCache returns a ready cache.  ttl <= 0 falls back to DefaultCacheTTL.
func NewCache(src Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{src: src, ttl: ttl}
}

// Get resolves (language, publicKey), serving from memory when fresh.
func (c *Cache) Get(ctx context.Context, language, publicKey string) (*Resolution, error) {
	k := language + "\x00" + publicKey

	if v, ok := c.m.Load(k); ok {
		ent := v.(*cacheEntry)
		if time.Since(ent.loadedAt) < c.ttl {
			metrics.KeyCacheHitTotal.Inc()
			return ent.res, nil
		}
	}

	v, err, _ := c.sfg.Do(k, func() (interface{}, error) {
		// Double-check after the singleflight barrier; a concurrent caller
		// may have refreshed the entry while we queued.
		if v, ok := c.m.Load(k); ok {
			ent := v.(*cacheEntry)
			if time.Since(ent.loadedAt) < c.ttl {
				return ent.res, nil
			}
		}
		metrics.KeyCacheMissTotal.Inc()
		res, err := c.src.Resolve(ctx, language, publicKey)
		if err != nil {
			return nil, err
		}
		c.m.Store(k, &cacheEntry{res: res, loadedAt: time.Now()})
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Resolution), nil
}

// Invalidate drops one entry, e.g. right after a rename.
func (c *Cache) Invalidate(language, publicKey string) {
	c.m.Delete(language + "\x00" + publicKey)
}
