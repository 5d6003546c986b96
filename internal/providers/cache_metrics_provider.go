package providers

import "nena/internal/structures"

// countingCache reports every lookup to the hit or miss counter.
type countingCache struct {
	next    CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *countingCache) Get(key string) ([]byte, bool) {
	body, hit := c.next.Get(key)
	if !hit {
		c.metrics.IncCacheMisses()
		return nil, false
	}
	c.metrics.IncCacheHits()
	return body, true
}

func (c *countingCache) Set(key string, body []byte) { c.next.Set(key, body) }

func (c *countingCache) Del(key string) { c.next.Del(key) }

// NewInstrumentedCacheProvider builds the response cache and counts its
// lookups. With the cache off every lookup would be a miss, so nothing is
// counted.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	cache := NewCacheProvider(conf, logger)
	if _, off := cache.(disabledCache); off {
		return cache
	}
	return &countingCache{next: cache, metrics: metrics}
}
