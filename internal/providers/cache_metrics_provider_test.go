package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestMetrics struct {
	hits   int
	misses int
}

func (m *cacheMetricsTestMetrics) IncRequestsTotal(_ string, _ int)                       {}
func (m *cacheMetricsTestMetrics) ObserveRequestDuration(_ string, _ time.Duration)       {}
func (m *cacheMetricsTestMetrics) IncCacheHits()                                          { m.hits++ }
func (m *cacheMetricsTestMetrics) IncCacheMisses()                                        { m.misses++ }
func (m *cacheMetricsTestMetrics) ObservePersistenceDuration(_ time.Duration)             {}
func (m *cacheMetricsTestMetrics) SetUsersTotal(_ int)                                    {}
func (m *cacheMetricsTestMetrics) IncRecordings(_ string)                                 {}
func (m *cacheMetricsTestMetrics) ObserveTranscriptionDuration(_ string, _ time.Duration) {}
func (m *cacheMetricsTestMetrics) IncBadgeUnlocks(_ string)                               {}
func (m *cacheMetricsTestMetrics) IncCoachingInsights(_ string)                           {}
func (m *cacheMetricsTestMetrics) SetCoachingQueueDepth(_ int)                            {}

type cacheMetricsTestInner struct {
	data map[string][]byte
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) {
	c.data[key] = value
}
func (c *cacheMetricsTestInner) Del(key string) {
	delete(c.data, key)
}

func TestCountingCache_Hit(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"key1": []byte("val1")}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &countingCache{next: inner, metrics: metrics}

	val, ok := cache.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("val1"), val)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 0, metrics.misses)
}

func TestCountingCache_Miss(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &countingCache{next: inner, metrics: metrics}

	val, ok := cache.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestCountingCache_SetDelegates(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &countingCache{next: inner, metrics: metrics}

	cache.Set("key2", []byte("val2"))

	val, ok := inner.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, []byte("val2"), val)
}

func TestCountingCache_MultipleOperations(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"a": []byte("1")}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &countingCache{next: inner, metrics: metrics}

	cache.Get("a") // hit
	cache.Get("b") // miss
	cache.Get("a") // hit
	cache.Get("c") // miss

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}

func TestCountingCache_DelDelegates(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"a": []byte("1")}}
	cache := &countingCache{next: inner, metrics: &cacheMetricsTestMetrics{}}

	cache.Del("a")

	_, ok := inner.Get("a")
	assert.False(t, ok)
}

func TestNewInstrumentedCacheProvider_DisabledIsNotWrapped(t *testing.T) {
	c := NewInstrumentedCacheProvider(cacheConfig(false, 1, time.Second), &cacheTestLogger{}, &cacheMetricsTestMetrics{})
	assert.IsType(t, disabledCache{}, c)
}

func TestNewInstrumentedCacheProvider_EnabledCountsLookups(t *testing.T) {
	metrics := &cacheMetricsTestMetrics{}
	c := NewInstrumentedCacheProvider(cacheConfig(true, 1, time.Second), &cacheTestLogger{}, metrics)
	assert.IsType(t, &countingCache{}, c)

	c.Set("badges:u1", []byte("[]"))
	c.Get("badges:u1")
	c.Get("badges:u2")
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}
