package data

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fxlab/fxbot/pkg/types"
)

// MemoryCache implements DataCache on an expiring in-memory store so repeated
// optimizer and walk-forward runs over the same file parse it once.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl. A
// non-positive ttl keeps entries until Clear.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{store: gocache.New(ttl, 10*time.Minute)}
}

// Get retrieves data from cache if available. The returned slice is a copy.
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	data := v.([]types.OHLCV)
	out := make([]types.OHLCV, len(data))
	copy(out, data)
	return out, true
}

// Set stores a copy of data in the cache.
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	stored := make([]types.OHLCV, len(data))
	copy(stored, data)
	c.store.SetDefault(key, stored)
}

// Clear removes all cached data.
func (c *MemoryCache) Clear() {
	c.store.Flush()
}

// Size returns the number of cached entries.
func (c *MemoryCache) Size() int {
	return c.store.ItemCount()
}

// CachedProvider wraps another DataProvider with caching.
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
}

// NewCachedProvider wraps provider with a non-expiring in-memory cache.
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return &CachedProvider{provider: provider, cache: NewMemoryCache(0)}
}

// NewCachedProviderWithCache wraps provider with a caller-supplied cache.
func NewCachedProviderWithCache(provider DataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: cache}
}

// GetName returns the name of the underlying provider with cache indication.
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData returns cached bars for source, loading through the underlying
// provider on a miss.
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	if cached, ok := p.cache.Get(source); ok {
		return cached, nil
	}
	data, err := p.provider.LoadData(source)
	if err != nil {
		return nil, err
	}
	p.cache.Set(source, data)
	return data, nil
}

// ValidateData validates data using the underlying provider.
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// ClearCache clears all cached data.
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// CacheSize returns the number of cached entries.
func (p *CachedProvider) CacheSize() int {
	return p.cache.Size()
}
