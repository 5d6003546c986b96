package providers

import (
	"errors"

	"nena/internal/structures"

	"github.com/coocood/freecache"
)

// CacheProviderInterface holds rendered JSON responses keyed by kind and user.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

// ResponseCache keeps per-user responses in freecache until they expire or
// a write for the user invalidates them.
type ResponseCache struct {
	entries    *freecache.Cache
	expireSecs int
	logger     Logger
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Response cache off")
		return disabledCache{}
	}

	// freecache works in whole seconds and treats 0 as no expiry.
	expire := max(int(conf.Cache.TTL.Seconds()), 1)
	logger.Infof(TypeApp, "Response cache on: %dMB, entries expire after %ds", conf.Cache.Size, expire)

	return &ResponseCache{
		entries:    freecache.NewCache(conf.Cache.Size << 20),
		expireSecs: expire,
		logger:     logger,
	}
}

func (c *ResponseCache) Get(key string) ([]byte, bool) {
	body, err := c.entries.Get([]byte(key))
	return body, err == nil
}

// Set stores body under key. Bodies larger than a cache segment allows are
// skipped and served uncached.
func (c *ResponseCache) Set(key string, body []byte) {
	err := c.entries.Set([]byte(key), body, c.expireSecs)
	if errors.Is(err, freecache.ErrLargeEntry) {
		c.logger.Debugf(TypeApp, "Response for %s not cached: %d bytes is over the entry limit", key, len(body))
	}
}

func (c *ResponseCache) Del(key string) {
	c.entries.Del([]byte(key))
}

type disabledCache struct{}

func (disabledCache) Get(string) ([]byte, bool) { return nil, false }
func (disabledCache) Set(string, []byte)        {}
func (disabledCache) Del(string)                {}
